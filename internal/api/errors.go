package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrInvalidCredentials indicates a login attempt was rejected by the server.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates the request was rejected for lack of a valid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrServer indicates a 5xx response with no actionable detail for the caller.
	ErrServer = errors.New("server error")
	// ErrMalformedResponse indicates the server returned a body the client could not interpret.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is a non-2xx API response. Status-based sentinels are reachable
// through errors.Is so callers can branch without inspecting the code.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s", http.StatusText(e.Status))
}

// Unwrap maps well-known statuses onto package sentinels.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return nil
	}
}

// errorBody is the structured message/field-error payload sent on 4xx responses.
type errorBody struct {
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// decodeError turns a non-2xx response into an *Error, draining whatever
// body shape the server produced.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(data) > 0 {
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			switch {
			case body.Message != "":
				apiErr.Message = body.Message
			case body.Error != "":
				apiErr.Message = body.Error
			}
			apiErr.Fields = body.FieldErrors
		}
	}

	return apiErr
}

// StatusOf extracts the HTTP status from err, or zero when err does not
// carry one (network failures, context cancellation).
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
