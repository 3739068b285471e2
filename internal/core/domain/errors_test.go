package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNoImages", ErrNoImages},
		{"ErrInvalidSettings", ErrInvalidSettings},
		{"ErrDecode", ErrDecode},
		{"ErrBudgetUnreachable", ErrBudgetUnreachable},
		{"ErrAuth", ErrAuth},
		{"ErrTransport", ErrTransport},
		{"ErrNonRetryable", ErrNonRetryable},
		{"ErrExtraction", ErrExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestTypedErrors_MatchSentinels tests each typed error matches only its sentinel
func TestTypedErrors_MatchSentinels(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"DecodeError", &DecodeError{Name: "a.png", Err: cause}, ErrDecode},
		{"AuthError", &AuthError{Message: "missing key"}, ErrAuth},
		{"TransportError", &TransportError{Attempts: 3, Err: cause}, ErrTransport},
		{"NonRetryableCallError", &NonRetryableCallError{Err: cause}, ErrNonRetryable},
		{"ExtractionError", &ExtractionError{Excerpt: "hello"}, ErrExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("stage: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.False(t, errors.Is(wrapped, ErrNoImages))
		})
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")

	assert.ErrorIs(t, &DecodeError{Err: cause}, cause)
	assert.ErrorIs(t, &TransportError{Err: cause}, cause)
	assert.ErrorIs(t, &NonRetryableCallError{Err: cause}, cause)
	assert.ErrorIs(t, &ConnectionError{Err: cause}, cause)
}

func TestTransportError_KeepsLastStatus(t *testing.T) {
	last := &StatusError{StatusCode: 503, Message: "overloaded"}
	err := &TransportError{Attempts: 3, Err: last}

	var status *StatusError
	assert.True(t, errors.As(err, &status))
	assert.Equal(t, 503, status.StatusCode)
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestDecodeError_Message(t *testing.T) {
	err := &DecodeError{Name: "page.png", Err: errors.New("unknown format")}
	assert.Equal(t, `decode image "page.png": unknown format`, err.Error())

	err = &DecodeError{Err: errors.New("unknown format")}
	assert.Equal(t, "decode image: unknown format", err.Error())
}

func TestAuthError_Message(t *testing.T) {
	assert.Equal(t, "authentication failed: no API key", (&AuthError{Message: "no API key"}).Error())
	assert.Contains(t, (&AuthError{StatusCode: 401, Message: "invalid x-api-key"}).Error(), "status 401")
}

func TestStatusError_Classification(t *testing.T) {
	tests := []struct {
		code         int
		serverFault  bool
		unauthorized bool
	}{
		{400, false, false},
		{401, false, true},
		{403, false, true},
		{404, false, false},
		{429, false, false},
		{500, true, false},
		{529, true, false},
		{599, true, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.code), func(t *testing.T) {
			err := &StatusError{StatusCode: tt.code}
			assert.Equal(t, tt.serverFault, err.ServerFault())
			assert.Equal(t, tt.unauthorized, err.Unauthorized())
		})
	}
}

func TestExtractionError_IncludesExcerpt(t *testing.T) {
	err := &ExtractionError{Excerpt: "Sorry, I cannot"}
	assert.Contains(t, err.Error(), "Sorry, I cannot")
}
