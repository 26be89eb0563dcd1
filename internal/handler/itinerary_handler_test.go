package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/middleware"
	"github.com/octobees/itinerary-maker/api/internal/repository"
	"github.com/octobees/itinerary-maker/api/internal/service"
	"github.com/octobees/itinerary-maker/api/internal/storage"
)

type fakeDelegations struct {
	delegations *dto.Delegations
	err         error
}

func (f *fakeDelegations) Lookup(ctx context.Context, userID uuid.UUID) (*dto.Delegations, error) {
	return f.delegations, f.err
}

type recordingGenerator struct {
	mu        sync.Mutex
	selection entity.Selection
	name      string
}

func (g *recordingGenerator) Generate(ctx context.Context, actor uuid.UUID, name string, selection entity.Selection) (*entity.Itinerary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selection = selection
	g.name = name
	it := entity.NewItinerary(name, selection, nil, entity.UnresolvedActor(actor), time.Now())
	return &it, nil
}

type fakeItineraries struct {
	itinerary *entity.Itinerary
	urlErr    error
}

func (f *fakeItineraries) Get(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error) {
	if f.itinerary == nil || f.itinerary.ID != id {
		return nil, repository.ErrItineraryNotFound
	}
	return f.itinerary, nil
}

func (f *fakeItineraries) ExportURL(ctx context.Context, actor, id uuid.UUID) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://blob.example.com/itineraries/" + id.String() + ".xlsx?sig=abc", nil
}

func (f *fakeItineraries) OpenExport(ctx context.Context, actor, id uuid.UUID) (storage.Info, io.ReadCloser, error) {
	return storage.Info{Key: "itineraries/" + id.String() + ".xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		io.NopCloser(strings.NewReader("xlsx-bytes")), nil
}

func TestItineraryHandler_Form_NilDelegations(t *testing.T) {
	h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{})

	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/itinerary/form", actor: uuid.New()})
	require.NoError(t, h.Form(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var form dto.FilterFormResponse
	decodeEnvelope(t, rec, &form)
	assert.Equal(t, dto.StageSelectFilters, form.Stage)
	require.Len(t, form.Controls, 5)
	for _, control := range form.Controls {
		assert.True(t, control.IsMulti)
		assert.Empty(t, control.Options)
		assert.Empty(t, control.Selected)
	}
}

func TestItineraryHandler_Delegations(t *testing.T) {
	delegations := &dto.Delegations{DelegatedStates: []dto.Option{{Value: "s1", Label: "Jakarta"}}}
	h := NewItineraryHandler(&fakeDelegations{delegations: delegations}, nil, &fakeItineraries{})

	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/itinerary/delegations", actor: uuid.New()})
	require.NoError(t, h.Delegations(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.Delegations
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, delegations.DelegatedStates, got.DelegatedStates)

	h = NewItineraryHandler(&fakeDelegations{err: errors.New("redis down")}, nil, &fakeItineraries{})
	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/itinerary/delegations", actor: uuid.New()})
	require.NoError(t, h.Delegations(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestItineraryHandler_Submit(t *testing.T) {
	owner := uuid.New()
	generator := &recordingGenerator{}
	tracker := service.NewGenerationTracker(generator, service.TrackerOptions{Timeout: time.Second})
	h := NewItineraryHandler(&fakeDelegations{}, tracker, &fakeItineraries{})

	c, rec := newTestContext(testRequest{
		method: http.MethodPost, target: "/itineraries", actor: owner,
		body: `{"name":"North route","states":["A","C"],"categories":[]}`,
	})
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp dto.SubmitItineraryResponse
	decodeEnvelope(t, rec, &resp)
	assert.Equal(t, dto.StageGenerateAndSave, resp.Stage)
	jobID, err := uuid.Parse(resp.JobID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tracker.Wait(ctx))

	generator.mu.Lock()
	assert.Equal(t, "North route", generator.name)
	assert.Equal(t, []string{"A", "C"}, generator.selection.States)
	assert.NotNil(t, generator.selection.Categories)
	assert.Empty(t, generator.selection.Categories)
	assert.Nil(t, generator.selection.BusinessModels)
	generator.mu.Unlock()

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/", actor: owner, params: map[string]string{"id": jobID.String()}})
	require.NoError(t, h.JobStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var status dto.JobStatusResponse
	decodeEnvelope(t, rec, &status)
	assert.Equal(t, string(service.JobSucceeded), status.Status)
	assert.NotNil(t, status.ItineraryID)

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/", actor: uuid.New(), params: map[string]string{"id": jobID.String()}})
	require.NoError(t, h.JobStatus(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItineraryHandler_DelegationFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lookup := &fakeDelegations{err: errors.New("connection reset")}

	t.Run("form renders empty controls", func(t *testing.T) {
		h := NewItineraryHandler(lookup, nil, &fakeItineraries{}).WithLogger(zap.New(core))
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/itinerary/form", actor: uuid.New()})
		require.NoError(t, h.Form(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var form dto.FilterFormResponse
		decodeEnvelope(t, rec, &form)
		require.Len(t, form.Controls, 5)
		for _, control := range form.Controls {
			assert.Empty(t, control.Options)
		}
	})

	t.Run("submit still starts generation", func(t *testing.T) {
		generator := &recordingGenerator{}
		tracker := service.NewGenerationTracker(generator, service.TrackerOptions{Timeout: time.Second})
		h := NewItineraryHandler(lookup, tracker, &fakeItineraries{}).WithLogger(zap.New(core))

		c, rec := newTestContext(testRequest{
			method: http.MethodPost, target: "/itineraries", actor: uuid.New(),
			body: `{"name":"Fallback","states":["CA"]}`,
		})
		require.NoError(t, h.Submit(c))
		require.Equal(t, http.StatusAccepted, rec.Code)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, tracker.Wait(ctx))

		generator.mu.Lock()
		defer generator.mu.Unlock()
		assert.Equal(t, []string{"CA"}, generator.selection.States)
	})

	assert.Equal(t, 2, logs.FilterMessage("delegation lookup failed, rendering empty controls").Len())
}

func TestItineraryHandler_Submit_InvalidPayload(t *testing.T) {
	tracker := service.NewGenerationTracker(&recordingGenerator{}, service.TrackerOptions{})
	h := NewItineraryHandler(&fakeDelegations{}, tracker, &fakeItineraries{})

	c, rec := newTestContext(testRequest{method: http.MethodPost, target: "/itineraries", actor: uuid.New(), body: `{"states":"A"}`})
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItineraryHandler_GetAndExport(t *testing.T) {
	owner := uuid.New()
	it := entity.NewItinerary("Route", entity.Selection{}, nil, entity.UnresolvedActor(owner), time.Now())
	params := map[string]string{"id": it.ID.String()}

	t.Run("owner reads itinerary", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{itinerary: &it})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/", actor: owner, params: params})
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other user forbidden", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{itinerary: &it})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/", actor: uuid.New(), params: params})
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin reads any itinerary", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{itinerary: &it})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/", actor: uuid.New(), role: middleware.RoleAdmin, params: params})
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing itinerary", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/", actor: owner, params: params})
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("signed url", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{itinerary: &it})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/", actor: owner, params: params})
		require.NoError(t, h.Export(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ExportResponse
		decodeEnvelope(t, rec, &resp)
		assert.Contains(t, resp.URL, it.ID.String())
	})

	t.Run("streams when signing unsupported", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{itinerary: &it, urlErr: storage.ErrUnsupported})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/", actor: owner, params: params})
		require.NoError(t, h.Export(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "xlsx-bytes", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	})

	t.Run("download forces streaming", func(t *testing.T) {
		h := NewItineraryHandler(&fakeDelegations{}, nil, &fakeItineraries{itinerary: &it, urlErr: errors.New("must not be called")})
		c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/?download=1", actor: owner, params: params})
		require.NoError(t, h.Export(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "xlsx-bytes", rec.Body.String())
	})
}
