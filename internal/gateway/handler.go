package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/chat-gateway/internal/httputil"
	"github.com/af-corp/chat-gateway/internal/router"
	"github.com/af-corp/chat-gateway/internal/telemetry"
	"github.com/af-corp/chat-gateway/internal/types"
)

// Handler holds dependencies for the gateway HTTP handlers.
type Handler struct {
	router       *router.Router
	registry     *router.Registry
	maxBodyBytes func() int64
	metrics      *telemetry.Metrics
}

func NewHandler(registry *router.Registry, maxBodyBytes func() int64, metrics *telemetry.Metrics) *Handler {
	return &Handler{
		router:       router.New(registry),
		registry:     registry,
		maxBodyBytes: maxBodyBytes,
		metrics:      metrics,
	}
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(w, r)
	receivedAt := time.Now()

	limit := h.bodyLimit()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("request body too large", "request_id", reqID, "limit", limit)
			httputil.WritePayloadTooLargeError(w, reqID, limit)
			return
		}
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}

	resp := h.router.Route(r.Context(), body)
	duration := time.Since(receivedAt)
	model := modelLabel(body)

	attrs := []any{
		"request_id", reqID,
		"model", model,
		"status_code", resp.HTTPStatus(),
		"duration_ms", duration.Milliseconds(),
	}
	if resp.Failed() {
		attrs = append(attrs, "error_type", resp.ErrorType)
		slog.Warn("request failed", attrs...)
	} else {
		if resp.Usage != nil {
			attrs = append(attrs,
				"prompt_tokens", resp.Usage.PromptTokens,
				"completion_tokens", resp.Usage.CompletionTokens,
				"total_tokens", resp.Usage.TotalTokens,
			)
		}
		slog.Info("request completed", attrs...)
	}

	if h.metrics != nil {
		labels := telemetry.RequestLabels{
			Model:      model,
			Status:     strconv.Itoa(resp.HTTPStatus()),
			ErrorType:  string(resp.ErrorType),
			DurationMs: float64(duration.Milliseconds()),
		}
		if resp.Usage != nil {
			labels.PromptTokens = resp.Usage.PromptTokens
			labels.CompletionTokens = resp.Usage.CompletionTokens
		}
		h.metrics.RecordRequest(labels)
	}

	httputil.WriteChatResponse(w, reqID, resp)
}

// ListModels handles GET /v1/models
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(w, r)

	models := h.registry.Models()
	data := make([]modelObject, 0, len(models))
	for _, m := range models {
		data = append(data, modelObject{
			ID:         string(m.ID),
			Object:     "model",
			OwnedBy:    m.Provider,
			Configured: m.Configured,
		})
	}

	httputil.WriteJSON(w, reqID, http.StatusOK, modelListResponse{
		Object: "list",
		Data:   data,
	})
}

func requestID(w http.ResponseWriter, r *http.Request) string {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return w.Header().Get("X-Request-ID")
}

func (h *Handler) bodyLimit() int64 {
	if h.maxBodyBytes != nil {
		if n := h.maxBodyBytes(); n > 0 {
			return n
		}
	}
	return 1 << 20
}

// modelLabel extracts a bounded metrics label from a raw body.
func modelLabel(body []byte) string {
	var peek struct {
		Model string `json:"model"`
	}
	if json.Unmarshal(body, &peek) != nil {
		return "unknown"
	}
	if id, ok := types.ParseModelID(peek.Model); ok {
		return string(id)
	}
	return "unknown"
}

type modelObject struct {
	ID         string `json:"id"`
	Object     string `json:"object"`
	OwnedBy    string `json:"owned_by"`
	Configured bool   `json:"configured"`
}

type modelListResponse struct {
	Object string        `json:"object"`
	Data   []modelObject `json:"data"`
}
