package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/af-corp/chat-gateway/internal/apierror"
	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/router/adapters"
	"github.com/af-corp/chat-gateway/internal/schema"
	"github.com/af-corp/chat-gateway/internal/types"
)

func TestRoute_DispatchesByModel(t *testing.T) {
	reg, fakes := newTestRegistry(types.ModelOpenAI, types.ModelGemini, types.ModelDeepSeek)
	rt := New(reg)

	resp := rt.Route(context.Background(), []byte(`{"model":"gemini","messages":[{"role":"user","content":"hi"}]}`))

	assert.Equal(t, "ok from gemini", resp.Reply)
	assert.Equal(t, 1, fakes[types.ModelGemini].calls)
	assert.Zero(t, fakes[types.ModelOpenAI].calls)
	assert.Zero(t, fakes[types.ModelDeepSeek].calls)
}

func TestRoute_TrimsBeforeValidation(t *testing.T) {
	reg, fakes := newTestRegistry(types.ModelOpenAI)
	rt := New(reg)

	resp := rt.Route(context.Background(), []byte(`{"model":"openai","messages":[{"role":"user","content":"  Hello  "}],"stream":true,"parameters":{"temperature":0.2}}`))

	require.False(t, resp.Failed())
	got := fakes[types.ModelOpenAI].last
	require.NotNil(t, got)
	assert.Equal(t, "Hello", got.Messages[0].Content)
	assert.True(t, got.Stream)
	assert.Equal(t, 0.2, got.Parameters["temperature"])
}

func TestRoute_ValidationFailure(t *testing.T) {
	reg, fakes := newTestRegistry(types.ModelOpenAI)
	rt := New(reg)

	resp := rt.Route(context.Background(), []byte(`{"model":"claude","messages":[{"role":"robot","content":"x"}]}`))

	assert.Equal(t, apierror.KindValidation, resp.ErrorType)
	assert.Equal(t, http.StatusBadRequest, resp.HTTPStatus())
	assert.Empty(t, resp.Reply)
	assert.NotEmpty(t, resp.Suggestion)
	violations, ok := resp.Details.([]schema.Violation)
	require.True(t, ok, "details should carry the violations")
	assert.Len(t, violations, 2)
	assert.Zero(t, fakes[types.ModelOpenAI].calls)
}

func TestRoute_UnregisteredModel(t *testing.T) {
	reg, _ := newTestRegistry(types.ModelOpenAI)
	rt := New(reg)

	resp := rt.Route(context.Background(), []byte(`{"model":"deepseek","messages":[]}`))

	assert.Equal(t, apierror.KindUnsupportedModel, resp.ErrorType)
	assert.Equal(t, http.StatusBadRequest, resp.HTTPStatus())
}

func TestRoute_MalformedJSON(t *testing.T) {
	reg, _ := newTestRegistry(types.ModelOpenAI)
	rt := New(reg)

	resp := rt.Route(context.Background(), []byte(`{"model":`))

	assert.Equal(t, apierror.KindUnknown, resp.ErrorType)
	assert.Equal(t, http.StatusInternalServerError, resp.HTTPStatus())
	assert.Equal(t, routeFailureMessage, resp.Error)
}

func TestRoute_RelaysAdapterFailureUnchanged(t *testing.T) {
	reg, fakes := newTestRegistry(types.ModelOpenAI)
	want := types.Failure(apierror.New(apierror.KindAPI, "The AI service is experiencing issues", "Try again").WithDetails("raw"))
	want.StatusCode = http.StatusInternalServerError
	fakes[types.ModelOpenAI].respond = func(*types.ChatRequest) *types.ChatResponse { return want }

	resp := New(reg).Route(context.Background(), []byte(`{"model":"openai","messages":[{"role":"user","content":"x"}]}`))

	assert.Same(t, want, resp)
}

func TestRoute_RecoversAdapterPanic(t *testing.T) {
	reg, fakes := newTestRegistry(types.ModelOpenAI)
	fakes[types.ModelOpenAI].respond = func(*types.ChatRequest) *types.ChatResponse { panic("boom") }

	resp := New(reg).Route(context.Background(), []byte(`{"model":"openai","messages":[{"role":"user","content":"x"}]}`))

	assert.Equal(t, apierror.KindUnknown, resp.ErrorType)
	assert.Equal(t, http.StatusInternalServerError, resp.HTTPStatus())
}

func TestRoute_DeepSeekEndToEnd(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	cfg := config.ProviderConfig{BaseURL: srv.URL, APIKeyEnv: "DEEPSEEK_API_KEY", DefaultModel: "deepseek-chat"}
	lookup := func(string) (string, bool) { return "ds-key", true }
	reg := NewRegistry()
	reg.Register(types.ModelDeepSeek, adapters.NewDeepSeekAdapter(cfg, srv.Client(), lookup, time.Second))

	resp := New(reg).Route(context.Background(), []byte(`{"model":"deepseek","messages":[{"role":"user","content":" Hi "}]}`))

	require.False(t, resp.Failed(), resp.Error)
	assert.Equal(t, "Hello!", resp.Reply)
	assert.Equal(t, http.StatusOK, resp.HTTPStatus())
	assert.Equal(t, map[string]any{
		"model":       "deepseek-chat",
		"messages":    []any{map[string]any{"role": "user", "content": "Hi"}},
		"temperature": 0.7,
		"max_tokens":  float64(1000),
	}, received)
}

func TestRoute_OpenAIMissingKeyEndToEnd(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	cfg := config.ProviderConfig{BaseURL: srv.URL, APIKeyEnv: "OPENAI_API_KEY", DefaultModel: "gpt-3.5-turbo"}
	lookup := func(string) (string, bool) { return "", false }
	reg := NewRegistry()
	reg.Register(types.ModelOpenAI, adapters.NewOpenAIAdapter(cfg, srv.Client(), lookup, time.Second))

	resp := New(reg).Route(context.Background(), []byte(`{"model":"openai","messages":[{"role":"user","content":"Hello"}]}`))

	assert.Equal(t, apierror.KindConfiguration, resp.ErrorType)
	assert.Equal(t, http.StatusInternalServerError, resp.HTTPStatus())
	assert.Empty(t, resp.Reply)
	assert.Zero(t, hits)
}
