package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/checkout"
	"github.com/semanticpay/shopagent/session"
	"github.com/semanticpay/shopagent/storefront"
)

const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeNotFound       = "not_found"
	errorCodePartialFailure = "partial_failure"
	errorCodeEmptyResponse  = "empty_response"
	errorCodeUpstream       = "upstream_error"
	errorCodeRuntime        = "runtime_error"
)

var errInvalidRequest = errors.New("invalid request")

type apiError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	UserErrors []string `json:"user_errors,omitempty"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	response := apiErrorResponse{
		Error: apiError{
			Code:    code,
			Message: err.Error(),
		},
	}
	var partial *checkout.PartialFailureError
	if errors.As(err, &partial) {
		for _, userError := range partial.UserErrors {
			response.Error.UserErrors = append(response.Error.UserErrors, userError.Message)
		}
	}
	writeJSON(w, status, response)
}

func writeInvalidRequest(w http.ResponseWriter, message string) {
	writeMappedError(w, invalidRequestError(message))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return invalidRequestError("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidRequestError("request body is required")
		}
		return invalidRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalidRequestError("request body must contain exactly one JSON object")
	}

	return nil
}

func mapError(err error) (int, string) {
	var partial *checkout.PartialFailureError
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, storefront.ErrInvalidRequest),
		errors.Is(err, checkout.ErrInvalidQuantity):
		return http.StatusBadRequest, errorCodeInvalidRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, storefront.ErrProductNotFound),
		errors.Is(err, storefront.ErrCartNotFound):
		return http.StatusNotFound, errorCodeNotFound
	case errors.As(err, &partial):
		return http.StatusUnprocessableEntity, errorCodePartialFailure
	case errors.Is(err, agentloop.ErrEmptyResponse):
		return http.StatusBadGateway, errorCodeEmptyResponse
	case storefront.IsUpstream(err):
		return http.StatusBadGateway, errorCodeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorCodeRuntime
	default:
		return http.StatusInternalServerError, errorCodeRuntime
	}
}

func invalidRequestError(message string) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, message)
}
