package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/itinerary-maker/api/internal/middleware"
	"github.com/octobees/itinerary-maker/api/internal/repository"
	"github.com/octobees/itinerary-maker/api/internal/service"
)

var notFoundErrors = []error{
	repository.ErrCompanyNotFound,
	repository.ErrUserNotFound,
	repository.ErrAccountRoleNotFound,
	repository.ErrContactNumberNotFound,
	repository.ErrSocialMediaNotFound,
	repository.ErrItineraryNotFound,
	service.ErrJobNotFound,
	service.ErrNoExport,
}

var conflictErrors = []error{
	repository.ErrEmailDuplicate,
	repository.ErrAccountRoleDuplicate,
	repository.ErrContactNumberDuplicate,
	repository.ErrSocialMediaDuplicate,
	service.ErrFormAlreadySubmitted,
}

// respond maps a service error onto the envelope. fallback is the message used
// for unexpected failures so internals never reach the client.
func respond(c echo.Context, err error, fallback string) error {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return Invalid(c, http.StatusBadRequest, reqErr.Error(), reqErr.fields)
	}
	var validationErr service.ValidationError
	if errors.As(err, &validationErr) {
		return Error(c, http.StatusBadRequest, validationErr.Error())
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return Error(c, http.StatusNotFound, target.Error())
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return Error(c, http.StatusConflict, target.Error())
		}
	}
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, middleware.ErrUnauthenticated):
		return Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return Error(c, http.StatusForbidden, "insufficient permissions")
	}
	middleware.RecordError(c, fmt.Errorf("%s: %w", fallback, err))
	return Error(c, http.StatusInternalServerError, fallback)
}

// pathUUID parses a UUID route parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, requestError{message: "invalid " + name}
	}
	return id, nil
}

// caller returns the authenticated identity of the request.
func caller(c echo.Context) (service.Caller, error) {
	id, err := middleware.UserIDFromContext(c)
	if err != nil {
		return service.Caller{}, err
	}
	return service.Caller{ID: id, IsAdmin: middleware.IsAdmin(c)}, nil
}
