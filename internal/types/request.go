package types

// Role is the author of a message within a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatRequest is the canonical internal representation of an inbound chat call.
// It is built fresh per request by schema.Validate and never mutated afterwards.
type ChatRequest struct {
	Model      ModelID        `json:"model" validate:"required,oneof=openai gemini deepseek"`
	Messages   []Message      `json:"messages" validate:"required,dive"`
	Stream     bool           `json:"stream,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Message is one turn of the conversation. Order within ChatRequest.Messages is
// the turn sequence and is forwarded upstream unchanged.
type Message struct {
	Role         Role          `json:"role" validate:"required,oneof=user assistant system"`
	Content      string        `json:"content"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty" validate:"omitempty"`
}

type FunctionCall struct {
	Name      string `json:"name" validate:"required"`
	Arguments string `json:"arguments"`
}
