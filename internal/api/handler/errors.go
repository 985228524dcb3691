package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/teachme/platform/internal/api/response"
	"github.com/teachme/platform/internal/domain"
	"github.com/teachme/platform/internal/service"
)

var validate = validator.New()

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var transport *service.TransportError
	var runFailed *service.RunFailedError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		response.TooManyRequests(w, err.Error())
	case errors.Is(err, service.ErrRunTimeout):
		response.GatewayTimeout(w, err.Error())
	case errors.Is(err, service.ErrThreadArchived):
		response.Conflict(w, err.Error())
	case errors.Is(err, context.Canceled):
		// Client is gone; the status is moot but 499-style handling is
		// not portable, so fall back to a request timeout.
		response.Error(w, http.StatusRequestTimeout, "request cancelled")
	case errors.As(err, &transport), errors.As(err, &runFailed):
		response.InternalError(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}

// fieldErrors flattens validator errors into a field -> message map.
func fieldErrors(err error) any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	out := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			out[e.Field()] = "field is required"
		case "email":
			out[e.Field()] = "invalid email format"
		case "min":
			out[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			out[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			out[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return out
}
