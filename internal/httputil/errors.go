package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/af-corp/chat-gateway/internal/apierror"
	"github.com/af-corp/chat-gateway/internal/types"
)

// WriteJSON encodes v with the given status and echoes the request id.
func WriteJSON(w http.ResponseWriter, requestID string, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "request_id", requestID, "error", err)
	}
}

// WriteChatResponse writes resp with its own HTTP status.
func WriteChatResponse(w http.ResponseWriter, requestID string, resp *types.ChatResponse) {
	WriteJSON(w, requestID, resp.HTTPStatus(), resp)
}

// WriteError writes a normalized error in the chat response shape.
func WriteError(w http.ResponseWriter, requestID string, e *apierror.Error) {
	WriteChatResponse(w, requestID, types.Failure(e))
}

func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, apierror.New(apierror.KindValidation, message,
		"Check the request body and try again."))
}

func WritePayloadTooLargeError(w http.ResponseWriter, requestID string, limit int64) {
	e := apierror.New(apierror.KindValidation, "Request body is too large",
		"Shorten the conversation or split it into smaller requests.").
		WithDetails(map[string]any{"maxBytes": limit})
	e.StatusCode = http.StatusRequestEntityTooLarge
	WriteError(w, requestID, e)
}
