package types

import (
	"net/http"

	"github.com/af-corp/chat-gateway/internal/apierror"
)

// ChatResponse is the single shape returned to clients for both outcomes.
// Reply is always serialized; on failure it is the empty string and the
// error fields are populated instead.
type ChatResponse struct {
	Reply      string         `json:"reply"`
	Usage      *Usage         `json:"usage,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorType  apierror.Kind  `json:"errorType,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    any            `json:"details,omitempty"`

	// StatusCode is the outer HTTP status; zero means 200.
	StatusCode int `json:"-"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Success builds a successful response carrying reply.
func Success(reply string) *ChatResponse {
	return &ChatResponse{Reply: reply, StatusCode: http.StatusOK}
}

// Failure converts a normalized error into the failure shape.
func Failure(e *apierror.Error) *ChatResponse {
	return &ChatResponse{
		Reply:      "",
		Error:      e.Message,
		ErrorType:  e.Type,
		Suggestion: e.Suggestion,
		Details:    e.Details,
		StatusCode: e.StatusCode,
	}
}

// Failed reports whether the response is on the error branch.
func (r *ChatResponse) Failed() bool {
	return r.ErrorType != ""
}

// HTTPStatus returns the status code the response should be written with.
func (r *ChatResponse) HTTPStatus() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}
