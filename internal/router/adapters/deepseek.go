package adapters

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/types"
)

var deepSeekParams = paramSpec{
	"model":             paramString,
	"temperature":       paramFloat,
	"max_tokens":        paramInt,
	"top_p":             paramFloat,
	"presence_penalty":  paramFloat,
	"frequency_penalty": paramFloat,
	"stop":              paramStop,
}

// DeepSeekAdapter calls DeepSeek's OpenAI-compatible endpoint. It has no
// streaming path: the stream flag is ignored and every call is single-shot.
type DeepSeekAdapter struct {
	base
}

func NewDeepSeekAdapter(cfg config.ProviderConfig, client *http.Client, lookup LookupEnv, timeout time.Duration) *DeepSeekAdapter {
	return &DeepSeekAdapter{base: newBase("deepseek", "DeepSeek", cfg, client, lookup, timeout)}
}

func (a *DeepSeekAdapter) defaults() sampling {
	return sampling{
		Model:       a.cfg.DefaultModel,
		Temperature: ptr(0.7),
		MaxTokens:   ptr(1000),
	}
}

func (a *DeepSeekAdapter) Complete(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	return a.run(ctx, func(ctx context.Context, apiKey string) (*types.ChatResponse, error) {
		settings, dropped := overlay(a.name, a.defaults(), req.Parameters, deepSeekParams)

		messages := make([]chatMessage, 0, len(req.Messages))
		for _, m := range req.Messages {
			messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
		}
		body := newChatCompletionBody(settings, messages)

		url := strings.TrimRight(a.cfg.BaseURL, "/") + "/chat/completions"
		httpReq, err := a.newRequest(ctx, url, body)
		if err != nil {
			return nil, err
		}
		if apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := a.send(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var completion chatCompletionResponse
		if err := decodeJSON(resp.Body, &completion, a.name); err != nil {
			return nil, err
		}
		reply, finish := completion.firstReply()
		out := types.Success(reply)
		out.Metadata = successMetadata(a.name, firstNonEmpty(completion.Model, settings.Model), finish, dropped)
		return out, nil
	})
}
