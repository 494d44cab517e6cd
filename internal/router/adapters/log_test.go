package adapters

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/af-corp/chat-gateway/internal/types"
)

func TestFailureLogIsRedacted(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv, _ := fakeProvider(t, http.StatusUnauthorized, "application/json",
		`{"error":{"message":"Incorrect API key provided: sk-abc1*********wxyz."}}`)
	a := NewOpenAIAdapter(providerCfg(srv.URL, "OPENAI_API_KEY", "gpt-3.5-turbo"), srv.Client(),
		env(map[string]string{"OPENAI_API_KEY": "sk-abc1secretwxyz"}), time.Second)

	a.Complete(context.Background(), userRequest(types.ModelOpenAI, "Hello"))

	out := buf.String()
	if !strings.Contains(out, "provider request failed") {
		t.Fatalf("expected failure log line, got %q", out)
	}
	if strings.Contains(out, "sk-abc1") {
		t.Errorf("log leaks key material: %s", out)
	}
}
