package adapters

import (
	"context"

	"github.com/af-corp/chat-gateway/internal/types"
)

// Adapter turns a validated ChatRequest into one provider call and the
// provider's answer into a ChatResponse. Complete never returns nil and never
// panics: every failure is normalized into the response's error branch.
type Adapter interface {
	Name() string
	Complete(ctx context.Context, req *types.ChatRequest) *types.ChatResponse
	// Configured reports whether the adapter's credential is available.
	Configured() bool
}
