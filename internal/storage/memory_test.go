package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	info, err := store.Put(ctx, "itineraries/a.xlsx", strings.NewReader("first"), PutOptions{ContentType: "text/plain", Metadata: map[string]string{"k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)

	_, err = store.Put(ctx, "itineraries/a.xlsx", strings.NewReader("second"), PutOptions{})
	require.NoError(t, err, "put overwrites")

	got, body, err := store.Get(ctx, "itineraries/a.xlsx")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, int64(6), got.Size)

	require.NoError(t, store.Delete(ctx, "itineraries/a.xlsx"))
	_, _, err = store.Get(ctx, "itineraries/a.xlsx")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, "itineraries/a.xlsx"), ErrNotFound))
}

func TestMemory_PresignUnsupported(t *testing.T) {
	_, err := NewMemory().PresignURL(context.Background(), "k", 0)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, store.Driver())

	_, err = Open(ctx, Config{Driver: "s3"})
	assert.Error(t, err, "s3 needs a bucket")

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.Error(t, err)
}
