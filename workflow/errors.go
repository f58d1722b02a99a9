package workflow

import (
	"errors"
	"fmt"

	"sketch2story/backend"
)

// Validation messages shown to the user
const (
	msgInvalidType = "Please select a valid image file"
	msgTooLarge    = "File size must be less than 10MB"
)

var (
	// ErrBusy is returned when a request is already in flight
	ErrBusy = errors.New("a request is already in progress")

	// ErrNoAudio is returned by playback operations when the result has no narration
	ErrNoAudio = errors.New("no narration available")

	// ErrNotEditable is returned by parameter setters while a request is in flight
	ErrNotEditable = errors.New("parameters cannot change while a request is in progress")
)

// ValidationError rejects a file before any request is made
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RequestError is a failure reported by the backend itself
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string { return e.Message }

// TransportError means no usable response arrived
type TransportError struct {
	BaseURL string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Network error. Make sure the story backend is running at %s", e.BaseURL)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Operation fallbacks used when the backend reports an error without a message
const (
	opAnalyze  = "Failed to process image"
	opGenerate = "Failed to generate story"
)

// classify maps a gateway error onto the session error taxonomy
func classify(op, baseURL string, err error) error {
	if err == nil {
		return nil
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = op
		}
		return &RequestError{Op: op, StatusCode: apiErr.StatusCode, Message: msg}
	}

	// timeouts, refused connections and undecodable bodies all land here
	return &TransportError{BaseURL: baseURL, Err: err}
}
