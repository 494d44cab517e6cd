package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/af-corp/chat-gateway/internal/types"
)

// Wire types for the OpenAI chat-completions protocol, which DeepSeek also speaks.

type chatMessage struct {
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	Name         string            `json:"name,omitempty"`
	FunctionCall *chatFunctionCall `json:"function_call,omitempty"`
}

type chatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatCompletionBody struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	Temperature      *float64       `json:"temperature,omitempty"`
	MaxTokens        *int           `json:"max_tokens,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	Stop             []string       `json:"stop,omitempty"`
	User             string         `json:"user,omitempty"`
	Seed             *int           `json:"seed,omitempty"`
	Stream           bool           `json:"stream,omitempty"`
	StreamOptions    *streamOptions `json:"stream_options,omitempty"`
}

func newChatCompletionBody(s sampling, messages []chatMessage) chatCompletionBody {
	return chatCompletionBody{
		Model:            s.Model,
		Messages:         messages,
		Temperature:      s.Temperature,
		MaxTokens:        s.MaxTokens,
		TopP:             s.TopP,
		PresencePenalty:  s.PresencePenalty,
		FrequencyPenalty: s.FrequencyPenalty,
		Stop:             s.Stop,
		User:             s.User,
		Seed:             s.Seed,
	}
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *chatUsage) toUsage() *types.Usage {
	if u == nil {
		return nil
	}
	return &types.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
}

// firstReply returns the first choice's text, or empty text if there is none.
func (r *chatCompletionResponse) firstReply() (string, string) {
	if len(r.Choices) == 0 {
		return "", ""
	}
	c := r.Choices[0]
	if c.Message.Content == nil {
		return "", c.FinishReason
	}
	return *c.Message.Content, c.FinishReason
}

type chatCompletionChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage      `json:"usage,omitempty"`
	Error json.RawMessage `json:"error,omitempty"`
}

// streamResult is the aggregate of a consumed completion stream.
type streamResult struct {
	Reply        string
	Model        string
	FinishReason string
	Usage        *chatUsage
}

// collectChatStream folds every delta of the first choice into one reply,
// strictly in arrival order.
func collectChatStream(body io.Reader, provider string) (*streamResult, error) {
	scanner := newSSEScanner(body)
	var (
		reply  strings.Builder
		result streamResult
	)

	for {
		payload, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s stream: %w", provider, err)
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, fmt.Errorf("unmarshal %s stream chunk: %w", provider, err)
		}
		if len(chunk.Error) > 0 {
			return nil, streamError(provider, chunk.Error)
		}

		if chunk.Model != "" {
			result.Model = chunk.Model
		}
		if chunk.Usage != nil {
			result.Usage = chunk.Usage
		}
		for _, choice := range chunk.Choices {
			if choice.Index != 0 {
				continue
			}
			reply.WriteString(choice.Delta.Content)
			if choice.FinishReason != nil {
				result.FinishReason = *choice.FinishReason
			}
		}
	}

	result.Reply = reply.String()
	return &result, nil
}
