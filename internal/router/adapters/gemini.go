package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/types"
)

var geminiParams = paramSpec{
	"model":       paramString,
	"temperature": paramFloat,
	"max_tokens":  paramInt,
	"top_p":       paramFloat,
	"top_k":       paramInt,
	"stop":        paramStop,
}

// GeminiAdapter handles communication with the Gemini generateContent API.
type GeminiAdapter struct {
	base
}

func NewGeminiAdapter(cfg config.ProviderConfig, client *http.Client, lookup LookupEnv, timeout time.Duration) *GeminiAdapter {
	return &GeminiAdapter{base: newBase("gemini", "Gemini", cfg, client, lookup, timeout)}
}

func (a *GeminiAdapter) Complete(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	return a.run(ctx, func(ctx context.Context, apiKey string) (*types.ChatResponse, error) {
		settings, dropped := overlay(a.name, sampling{Model: a.cfg.DefaultModel}, req.Parameters, geminiParams)

		body := generateContentRequest{
			Contents:         geminiContents(req.Messages),
			GenerationConfig: geminiGenerationConfig(settings),
		}

		endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(a.cfg.BaseURL, "/"), url.PathEscape(settings.Model))
		if req.Stream {
			endpoint = fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", strings.TrimRight(a.cfg.BaseURL, "/"), url.PathEscape(settings.Model))
		}

		httpReq, err := a.newRequest(ctx, endpoint, body)
		if err != nil {
			return nil, err
		}
		if apiKey != "" {
			httpReq.Header.Set("x-goog-api-key", apiKey)
		}

		resp, err := a.send(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var (
			reply  string
			finish string
			model  string
		)
		if req.Stream {
			reply, finish, model, err = collectGeminiStream(resp.Body)
		} else {
			var gr generateContentResponse
			if err = decodeJSON(resp.Body, &gr, a.name); err == nil {
				reply, finish = gr.firstText()
				model = gr.ModelVersion
			}
		}
		if err != nil {
			return nil, err
		}

		out := types.Success(reply)
		out.Metadata = successMetadata(a.name, firstNonEmpty(model, settings.Model), finish, dropped)
		return out, nil
	})
}

// geminiContents maps assistant turns to the "model" role and every other
// role to "user", one text part per message.
func geminiContents(msgs []types.Message) []geminiContent {
	out := make([]geminiContent, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == types.RoleAssistant {
			role = "model"
		}
		out = append(out, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return out
}

func geminiGenerationConfig(s sampling) *generationConfig {
	gc := &generationConfig{
		Temperature:     s.Temperature,
		TopP:            s.TopP,
		TopK:            s.TopK,
		MaxOutputTokens: s.MaxTokens,
		StopSequences:   s.Stop,
	}
	if gc.Temperature == nil && gc.TopP == nil && gc.TopK == nil && gc.MaxOutputTokens == nil && len(gc.StopSequences) == 0 {
		return nil
	}
	return gc
}

// collectGeminiStream concatenates the text of every streamed event in arrival order.
func collectGeminiStream(body io.Reader) (reply, finish, model string, err error) {
	scanner := newSSEScanner(body)
	var sb strings.Builder

	for {
		payload, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", "", "", fmt.Errorf("gemini stream: %w", err)
		}

		var chunk generateContentResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", "", "", fmt.Errorf("unmarshal gemini stream chunk: %w", err)
		}
		if len(chunk.Error) > 0 {
			return "", "", "", streamError("gemini", chunk.Error)
		}
		text, reason := chunk.firstText()
		sb.WriteString(text)
		if reason != "" {
			finish = reason
		}
		if chunk.ModelVersion != "" {
			model = chunk.ModelVersion
		}
	}
	return sb.String(), finish, model, nil
}

type generateContentRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Role  string       `json:"role"`
			Parts []geminiPart `json:"parts"`
		} `json:"content,omitempty"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates,omitempty"`
	ModelVersion string          `json:"modelVersion,omitempty"`
	Error        json.RawMessage `json:"error,omitempty"`
}

// firstText joins the text parts of the first candidate. No candidates is a
// valid, empty answer.
func (r *generateContentResponse) firstText() (string, string) {
	if len(r.Candidates) == 0 {
		return "", ""
	}
	c := r.Candidates[0]
	if c.Content == nil {
		return "", c.FinishReason
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), c.FinishReason
}
