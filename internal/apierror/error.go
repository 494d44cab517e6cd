package apierror

import (
	"fmt"
	"net/http"
)

// Error is the normalized failure every adapter and the router produce.
// Message and Suggestion are safe to show to end users; Details may hold
// raw diagnostics and is never promoted into Message.
type Error struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Type       Kind   `json:"type"`
	Details    any    `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.StatusCode, e.Message)
}

// New builds an Error of the given kind with its canonical status.
func New(kind Kind, message, suggestion string) *Error {
	return &Error{
		Message:    message,
		StatusCode: kind.Status(),
		Type:       kind,
		Suggestion: suggestion,
	}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Validation is returned when the inbound payload fails schema checks.
func Validation(details any) *Error {
	return New(KindValidation, "Invalid request format",
		"Check that each message has a role of user, assistant or system and text content.").
		WithDetails(details)
}

// MissingCredential is returned when a provider's API key is absent from the environment.
func MissingCredential(provider, envVar string) *Error {
	return &Error{
		Message:    fmt.Sprintf("%s API key is not configured", provider),
		StatusCode: http.StatusInternalServerError,
		Type:       KindConfiguration,
		Suggestion: fmt.Sprintf("Set the %s environment variable and restart the gateway.", envVar),
	}
}

// UnsupportedModel is returned when no adapter serves the requested model.
func UnsupportedModel(model string) *Error {
	return New(KindUnsupportedModel, fmt.Sprintf("Model %q is not supported", model),
		"Use one of: openai, gemini, deepseek.").
		WithDetails(map[string]any{"model": model})
}

// UpstreamError is a failed remote call that produced an HTTP status.
type UpstreamError struct {
	Provider   string
	StatusCode int
	// Message is the provider-supplied error text, if any could be parsed.
	Message string
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}
