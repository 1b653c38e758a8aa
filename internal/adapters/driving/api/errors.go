package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

// Error details shown to clients for readiness failures.
const (
	detailModelLoading = "LLM is still loading. Please wait."
	detailNoDocument   = "No document uploaded yet. Upload a PDF first."
	detailRateLimited  = "Too many requests. Please slow down."
)

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// detailFor returns the client-facing message for err.
func detailFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrModelLoading):
		return detailModelLoading
	case errors.Is(err, domain.ErrNoDocument):
		return detailNoDocument
	default:
		return err.Error()
	}
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}
