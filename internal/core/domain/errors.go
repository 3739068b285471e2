package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures by stage.
// Typed errors below carry context and match these sentinels with errors.Is.
var (
	// ErrNoImages indicates an analysis was requested without any image.
	ErrNoImages = errors.New("no images to analyze")

	// ErrInvalidSettings indicates pipeline settings failed validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrTooLarge indicates a submission exceeds the upload ceiling.
	ErrTooLarge = errors.New("submission too large")

	// Preparation Errors.

	// ErrDecode indicates the input bytes are not a decodable image.
	ErrDecode = errors.New("image decode failed")

	// ErrBudgetUnreachable indicates a tile could not be encoded under the
	// byte budget even at a single pixel.
	ErrBudgetUnreachable = errors.New("tile byte budget unreachable")

	// Call Errors.

	// ErrAuth indicates missing or rejected credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrTransport indicates the endpoint could not be reached, or kept
	// failing with server faults, after all retries.
	ErrTransport = errors.New("transport failed")

	// ErrNonRetryable indicates the endpoint rejected the request.
	ErrNonRetryable = errors.New("request rejected")

	// Extraction Errors.

	// ErrExtraction indicates no JSON object could be recovered from a reply.
	ErrExtraction = errors.New("json extraction failed")
)

// DecodeError reports an image that could not be decoded.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode image %q: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// AuthError reports absent or rejected credentials.
// StatusCode is zero when the key was missing and no request was made.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return "authentication failed: " + e.Message
	}
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// Is matches ErrAuth.
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// TransportError reports retry exhaustion. Err is the last observed failure.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("endpoint unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NonRetryableCallError reports a request the endpoint will never accept.
type NonRetryableCallError struct {
	Err error
}

func (e *NonRetryableCallError) Error() string {
	return fmt.Sprintf("request rejected: %v", e.Err)
}

func (e *NonRetryableCallError) Unwrap() error { return e.Err }

// Is matches ErrNonRetryable.
func (e *NonRetryableCallError) Is(target error) bool { return target == ErrNonRetryable }

// ExtractionError reports a reply with no recoverable JSON object.
// Excerpt holds a bounded prefix of the reply.
type ExtractionError struct {
	Excerpt string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no JSON object found in reply; reply starts with:\n%s", e.Excerpt)
}

// Is matches ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// StatusError is returned by inference adapters for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned status %d: %s", e.StatusCode, e.Message)
}

// ServerFault returns true for 5xx responses.
func (e *StatusError) ServerFault() bool {
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

// Unauthorized returns true when the endpoint rejected the credentials.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// ConnectionError is returned by inference adapters when the request
// never produced a response.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
