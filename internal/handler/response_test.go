package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/octobees/itinerary-maker/api/internal/middleware"
)

func TestSuccess(t *testing.T) {
	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/"})

	if err := Success(c, 0, "itinerary retrieved", map[string]string{"name": "North route"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var data map[string]string
	payload := decodeEnvelope(t, rec, &data)
	if payload.Status != "success" || payload.Message != "itinerary retrieved" || data["name"] != "North route" {
		t.Fatalf("unexpected response: %+v %v", payload, data)
	}
}

func TestError(t *testing.T) {
	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/"})

	if err := Error(c, 0, "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected default status 500, got %d", rec.Code)
	}

	payload := decodeEnvelope(t, rec, nil)
	if payload.Status != "error" || payload.Message != "boom" || payload.Errors != nil {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestBindAndValidateFieldErrors(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"max=3"`
	}

	c, rec := newTestContext(testRequest{method: http.MethodPost, target: "/", body: `{"email":"nope","name":"toolong"}`})
	var dest payload
	if err := respond(c, bindAndValidate(c, &dest), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec, nil)
	if resp.Errors["email"] != "invalid email format" {
		t.Fatalf("unexpected email error: %+v", resp.Errors)
	}
	if resp.Errors["name"] != "name must be at most 3 characters" {
		t.Fatalf("unexpected name error: %+v", resp.Errors)
	}
}

func TestRespondRecordsUnexpectedErrors(t *testing.T) {
	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/"})

	cause := errors.New("connection reset")
	if err := respond(c, cause, "failed to load itinerary"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if payload := decodeEnvelope(t, rec, nil); payload.Message != "failed to load itinerary" {
		t.Fatalf("internal error leaked to client: %+v", payload)
	}

	recorded, ok := c.Get(middleware.ContextKeyError).(error)
	if !ok || !errors.Is(recorded, cause) {
		t.Fatalf("expected cause recorded for logging, got %v", recorded)
	}
}
