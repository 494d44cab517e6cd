package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/af-corp/chat-gateway/internal/apierror"
	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/redact"
	"github.com/af-corp/chat-gateway/internal/types"
)

// maxErrorBodySize caps how much of a failed provider response is read.
const maxErrorBodySize = 64 * 1024

// LookupEnv resolves an environment variable. Tests substitute their own.
type LookupEnv func(key string) (string, bool)

// base holds what every provider adapter shares: config, HTTP client,
// credential lookup and the outbound timeout.
type base struct {
	name        string
	displayName string
	cfg         config.ProviderConfig
	client      *http.Client
	lookupEnv   LookupEnv
	timeout     time.Duration
}

func newBase(name, displayName string, cfg config.ProviderConfig, client *http.Client, lookup LookupEnv, timeout time.Duration) base {
	if client == nil {
		client = http.DefaultClient
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return base{
		name:        name,
		displayName: displayName,
		cfg:         cfg,
		client:      client,
		lookupEnv:   lookup,
		timeout:     timeout,
	}
}

func (b *base) Name() string { return b.name }

func (b *base) defaultMessage() string {
	return "Failed to get response from " + b.displayName
}

// apiKey returns the provider credential. ok is false only when a key is
// required and missing.
func (b *base) apiKey() (string, bool) {
	key, _ := b.lookupEnv(b.cfg.APIKeyEnv)
	if key == "" && b.cfg.KeyRequired() {
		return "", false
	}
	return key, true
}

func (b *base) Configured() bool {
	_, ok := b.apiKey()
	return ok
}

// run executes call under the adapter's precondition, timeout and panic
// boundary, converting any failure into a normalized response.
func (b *base) run(ctx context.Context, call func(ctx context.Context, apiKey string) (*types.ChatResponse, error)) (resp *types.ChatResponse) {
	key, ok := b.apiKey()
	if !ok {
		return types.Failure(apierror.MissingCredential(b.displayName, b.cfg.APIKeyEnv))
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("provider adapter panic", "provider", b.name, "panic", r)
			resp = types.Failure(apierror.Normalize(fmt.Errorf("panic: %v", r), b.defaultMessage()))
		}
	}()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := call(ctx, key)
	if err != nil {
		normalized := apierror.Normalize(err, b.defaultMessage())
		slog.Error("provider request failed",
			"provider", b.name,
			"error", redact.String(err.Error()),
			"error_type", normalized.Type,
			"status", normalized.StatusCode,
		)
		return types.Failure(normalized)
	}
	return result
}

// newRequest builds a JSON POST to url with the configured extra headers.
func (b *base) newRequest(ctx context.Context, url string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", b.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range b.cfg.Headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}
	return httpReq, nil
}

// send performs the request and turns non-2xx answers into an
// *apierror.UpstreamError. On success the caller owns resp.Body.
func (b *base) send(httpReq *http.Request) (*http.Response, error) {
	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", b.name, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return nil, &apierror.UpstreamError{
		Provider:   b.name,
		StatusCode: resp.StatusCode,
		Message:    upstreamMessage(body),
		Body:       string(body),
	}
}

// upstreamMessage extracts the human-readable text from the error envelopes
// used by OpenAI-compatible and Gemini APIs: {"error":{"message":...}}.
func upstreamMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var detailed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil && detailed.Message != "" {
		return detailed.Message
	}

	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		return plain
	}
	return ""
}

// streamError converts an error object received mid-stream. A numeric code in
// the HTTP error range is classified like a failed response with that status.
func streamError(provider string, raw json.RawMessage) error {
	var detailed struct {
		Code json.RawMessage `json:"code"`
	}
	_ = json.Unmarshal(raw, &detailed)

	msg := upstreamMessage([]byte(`{"error":` + string(raw) + `}`))
	var code int
	if json.Unmarshal(detailed.Code, &code) == nil && code >= 400 && code <= 599 {
		return &apierror.UpstreamError{
			Provider:   provider,
			StatusCode: code,
			Message:    msg,
			Body:       string(raw),
		}
	}
	return fmt.Errorf("%s stream error: %s", provider, msg)
}

func decodeJSON(r io.Reader, dest any, provider string) error {
	if err := json.NewDecoder(r).Decode(dest); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", provider, err)
	}
	return nil
}

func successMetadata(provider, model, finishReason string, dropped []string) map[string]any {
	meta := map[string]any{
		"provider": provider,
		"model":    model,
	}
	if finishReason != "" {
		meta["finishReason"] = finishReason
	}
	if len(dropped) > 0 {
		meta["droppedParameters"] = dropped
	}
	return meta
}
