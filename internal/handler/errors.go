package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ekata-api/internal/types"
	"ekata-api/pkg/dashboard"
	"ekata-api/pkg/generate"
	"ekata-api/pkg/weather"
)

var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// ErrorHandler maps domain errors to a status code and an {"error": msg}
// body. It is installed with httpx.SetErrorHandlerCtx.
func ErrorHandler(_ context.Context, err error) (int, any) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, errBadRequest):
		status, msg = http.StatusBadRequest, strip(err, errBadRequest)
	case errors.Is(err, generate.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, strip(err, generate.ErrInvalidRequest)
	case errors.Is(err, generate.ErrMissingCredentials):
		msg = "The API key is not configured on the server."
	case errors.Is(err, generate.ErrUnparsableOutput):
		msg = "Failed to parse the JSON response from the AI model."
	case errors.Is(err, dashboard.ErrRefreshInFlight):
		status = http.StatusConflict
	case errors.Is(err, weather.ErrUnknownEstate):
		status = http.StatusNotFound
	case errors.Is(err, weather.ErrFetchFailed):
		status, msg = http.StatusBadGateway, weather.ErrFetchFailed.Error()
	}
	return status, types.ErrorResponse{Error: msg}
}

// strip drops the sentinel prefix so clients see only the detail.
func strip(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
