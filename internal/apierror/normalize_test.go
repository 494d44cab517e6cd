package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PassThrough(t *testing.T) {
	original := MissingCredential("OpenAI", "OPENAI_API_KEY")

	got := Normalize(original, "ignored")
	assert.Same(t, original, got)

	wrapped := fmt.Errorf("call provider: %w", original)
	assert.Same(t, original, Normalize(wrapped, "ignored"))

	// Normalizing twice is a no-op.
	once := Normalize(errors.New("boom"), "Failed")
	assert.Same(t, once, Normalize(once, "other"))
}

func TestNormalize_StatusTable(t *testing.T) {
	tests := []struct {
		status     int
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{http.StatusTooManyRequests, KindAPI, 429, "currently at capacity"},
		{http.StatusUnauthorized, KindAuthentication, 401, "API key is invalid or not configured"},
		{http.StatusForbidden, KindAuthentication, 403, "forbidden"},
		{http.StatusBadRequest, KindValidation, 400, "Invalid request format"},
		{http.StatusInternalServerError, KindAPI, 500, "experiencing issues"},
		{http.StatusServiceUnavailable, KindAPI, 503, "temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			got := Normalize(&UpstreamError{Provider: "openai", StatusCode: tt.status}, "Failed")
			assert.Equal(t, tt.wantKind, got.Type)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Contains(t, got.Message, tt.wantMsg)
			assert.NotEmpty(t, got.Suggestion)
		})
	}
}

func TestNormalize_UnrecognizedStatus(t *testing.T) {
	upstream := &UpstreamError{Provider: "gemini", StatusCode: 418, Message: "I'm a teapot"}

	got := Normalize(fmt.Errorf("send: %w", upstream), "Failed to get response from Gemini")
	assert.Equal(t, KindAPI, got.Type)
	assert.Equal(t, 418, got.StatusCode)
	assert.Contains(t, got.Message, "418")
	assert.NotContains(t, got.Message, "teapot", "upstream text must stay out of the top-level message")

	details, ok := got.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "I'm a teapot", details["upstreamMessage"])
	assert.Equal(t, 418, details["status"])
}

func TestNormalize_UpstreamMessageKeptInDetails(t *testing.T) {
	upstream := &UpstreamError{Provider: "openai", StatusCode: 401, Message: "Incorrect API key provided: sk-abc"}

	got := Normalize(upstream, "Failed")
	assert.Equal(t, "API key is invalid or not configured", got.Message)
	details := got.Details.(map[string]any)
	assert.Equal(t, "Incorrect API key provided: sk-abc", details["upstreamMessage"])
}

func TestNormalize_UpstreamMessageRedacted(t *testing.T) {
	upstream := &UpstreamError{Provider: "openai", StatusCode: 401, Message: "Incorrect API key provided: sk-abc1*********wxyz."}

	got := Normalize(upstream, "Failed")
	details := got.Details.(map[string]any)
	assert.Equal(t, "Incorrect API key provided: [REDACTED].", details["upstreamMessage"])
}

func TestNormalize_Network(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"keyword", errors.New("network is unreachable")},
		{"cannot connect", errors.New("cannot connect to host")},
		{"deadline", fmt.Errorf("openai request: %w", context.DeadlineExceeded)},
		{"net.OpError", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err, "Failed")
			assert.Equal(t, KindNetwork, got.Type)
			assert.Equal(t, http.StatusServiceUnavailable, got.StatusCode)
			assert.NotEmpty(t, got.Suggestion)
		})
	}
}

func TestNormalize_BadSchemeIsNotNetwork(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "ftp://api.example.com/chat", Err: errors.New(`unsupported protocol scheme "ftp"`)}

	got := Normalize(err, "Failed to get response from OpenAI")
	assert.Equal(t, KindUnknown, got.Type)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
}

func TestNormalize_TimeoutURLErrorIsNetwork(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://api.example.com", Err: timeoutErr{}}

	got := Normalize(err, "Failed")
	assert.Equal(t, KindNetwork, got.Type)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNormalize_NonErrorStatusMapsToBadGateway(t *testing.T) {
	for _, status := range []int{100, 204, 304, 600} {
		got := Normalize(&UpstreamError{Provider: "gemini", StatusCode: status}, "Failed")
		assert.Equal(t, KindAPI, got.Type)
		assert.Equal(t, http.StatusBadGateway, got.StatusCode, "status %d", status)
		assert.Equal(t, status, got.Details.(map[string]any)["status"])
	}
}

func TestNormalize_Unknown(t *testing.T) {
	got := Normalize(errors.New("unexpected end of JSON input"), "Failed to get response from DeepSeek")
	assert.Equal(t, KindUnknown, got.Type)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.Equal(t, "Failed to get response from DeepSeek", got.Message)
	assert.Equal(t, "unexpected end of JSON input", got.Details)
}

func TestNormalize_NilAndEmptyDefault(t *testing.T) {
	got := Normalize(nil, "")
	require.NotNil(t, got)
	assert.Equal(t, KindUnknown, got.Type)
	assert.NotEmpty(t, got.Message)
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, 400, KindValidation.Status())
	assert.Equal(t, 400, KindUnsupportedModel.Status())
	assert.Equal(t, 500, KindConfiguration.Status())
	assert.Equal(t, 503, KindNetwork.Status())
	assert.Equal(t, 500, KindUnknown.Status())
	assert.True(t, KindRateLimit.Valid())
	assert.False(t, Kind("TIMEOUT").Valid())
}

func TestMissingCredential(t *testing.T) {
	e := MissingCredential("Gemini", "GEMINI_API_KEY")
	assert.Equal(t, KindConfiguration, e.Type)
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode)
	assert.Contains(t, e.Suggestion, "GEMINI_API_KEY")
}
