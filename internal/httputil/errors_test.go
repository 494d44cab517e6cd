package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/af-corp/chat-gateway/internal/apierror"
	"github.com/af-corp/chat-gateway/internal/types"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, "req_123", apierror.UnsupportedModel("claude"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if rid := w.Header().Get("X-Request-ID"); rid != "req_123" {
		t.Errorf("expected X-Request-ID req_123, got %s", rid)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["reply"] != "" {
		t.Errorf("expected empty reply, got %v", resp["reply"])
	}
	if resp["errorType"] != string(apierror.KindUnsupportedModel) {
		t.Errorf("expected errorType UNSUPPORTED_MODEL, got %v", resp["errorType"])
	}
	if resp["suggestion"] == "" || resp["suggestion"] == nil {
		t.Error("expected a suggestion")
	}
}

func TestWriteChatResponse_Success(t *testing.T) {
	w := httptest.NewRecorder()
	resp := types.Success("Hello!")
	resp.Usage = &types.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}
	WriteChatResponse(w, "", resp)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid != "" {
		t.Errorf("expected no X-Request-ID, got %s", rid)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["reply"] != "Hello!" {
		t.Errorf("expected reply Hello!, got %v", body["reply"])
	}
	if _, ok := body["error"]; ok {
		t.Error("success response must not carry an error field")
	}
	usage, _ := body["usage"].(map[string]any)
	if usage["totalTokens"] != float64(3) {
		t.Errorf("expected totalTokens 3, got %v", usage["totalTokens"])
	}
}

func TestWritePayloadTooLargeError(t *testing.T) {
	w := httptest.NewRecorder()
	WritePayloadTooLargeError(w, "req_789", 1024)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}
}
