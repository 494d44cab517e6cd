package adapters

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/types"
)

var openAIParams = paramSpec{
	"model":             paramString,
	"temperature":       paramFloat,
	"max_tokens":        paramInt,
	"top_p":             paramFloat,
	"presence_penalty":  paramFloat,
	"frequency_penalty": paramFloat,
	"stop":              paramStop,
	"user":              paramString,
	"seed":              paramInt,
}

// OpenAIAdapter handles communication with OpenAI-compatible chat-completion APIs.
type OpenAIAdapter struct {
	base
}

func NewOpenAIAdapter(cfg config.ProviderConfig, client *http.Client, lookup LookupEnv, timeout time.Duration) *OpenAIAdapter {
	return &OpenAIAdapter{base: newBase("openai", "OpenAI", cfg, client, lookup, timeout)}
}

func (a *OpenAIAdapter) defaults() sampling {
	return sampling{
		Model:            a.cfg.DefaultModel,
		Temperature:      ptr(0.7),
		MaxTokens:        ptr(1000),
		TopP:             ptr(1.0),
		PresencePenalty:  ptr(0.0),
		FrequencyPenalty: ptr(0.0),
	}
}

func (a *OpenAIAdapter) Complete(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	return a.run(ctx, func(ctx context.Context, apiKey string) (*types.ChatResponse, error) {
		settings, dropped := overlay(a.name, a.defaults(), req.Parameters, openAIParams)

		body := newChatCompletionBody(settings, openAIMessages(req.Messages))
		if req.Stream {
			body.Stream = true
			body.StreamOptions = &streamOptions{IncludeUsage: true}
		}

		url := strings.TrimRight(a.cfg.BaseURL, "/") + "/chat/completions"
		httpReq, err := a.newRequest(ctx, url, body)
		if err != nil {
			return nil, err
		}
		if apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+apiKey)
		}
		if req.Stream {
			httpReq.Header.Set("Accept", "text/event-stream")
		}

		resp, err := a.send(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if req.Stream {
			result, err := collectChatStream(resp.Body, a.name)
			if err != nil {
				return nil, err
			}
			out := types.Success(result.Reply)
			out.Usage = result.Usage.toUsage()
			out.Metadata = successMetadata(a.name, firstNonEmpty(result.Model, settings.Model), result.FinishReason, dropped)
			return out, nil
		}

		var completion chatCompletionResponse
		if err := decodeJSON(resp.Body, &completion, a.name); err != nil {
			return nil, err
		}
		reply, finish := completion.firstReply()
		out := types.Success(reply)
		out.Usage = completion.Usage.toUsage()
		out.Metadata = successMetadata(a.name, firstNonEmpty(completion.Model, settings.Model), finish, dropped)
		return out, nil
	})
}

// openAIMessages passes roles through and keeps name and function_call when set.
func openAIMessages(msgs []types.Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := chatMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		}
		if m.FunctionCall != nil {
			cm.FunctionCall = &chatFunctionCall{
				Name:      m.FunctionCall.Name,
				Arguments: m.FunctionCall.Arguments,
			}
		}
		out = append(out, cm)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
