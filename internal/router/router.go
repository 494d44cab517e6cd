package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/af-corp/chat-gateway/internal/apierror"
	"github.com/af-corp/chat-gateway/internal/schema"
	"github.com/af-corp/chat-gateway/internal/types"
)

const routeFailureMessage = "An unexpected error occurred while processing your request"

// Router is the single entry point for chat requests: it validates once,
// dispatches on the model field and relays the adapter's result unchanged.
type Router struct {
	registry *Registry
}

func New(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Route handles a raw JSON request body. It never panics and always returns
// a response on exactly one of the reply or error branches.
func (rt *Router) Route(ctx context.Context, raw []byte) (resp *types.ChatResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("router panic", "panic", r)
			resp = types.Failure(apierror.Normalize(fmt.Errorf("panic: %v", r), routeFailureMessage))
		}
	}()

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return types.Failure(apierror.Normalize(fmt.Errorf("decode request body: %w", err), routeFailureMessage))
	}
	return rt.dispatch(ctx, payload)
}

func (rt *Router) dispatch(ctx context.Context, payload any) *types.ChatResponse {
	if obj, ok := payload.(map[string]any); ok {
		payload = schema.NormalizeContent(obj)
	}

	req, failure := schema.Validate(payload)
	if failure != nil {
		slog.Debug("request rejected by validation", "violations", len(failure.Violations))
		return types.Failure(apierror.Validation(failure.Violations))
	}

	adapter, ok := rt.registry.Get(req.Model)
	if !ok {
		return types.Failure(apierror.UnsupportedModel(string(req.Model)))
	}

	resp := adapter.Complete(ctx, req)
	if resp == nil {
		return types.Failure(apierror.Normalize(nil, routeFailureMessage))
	}
	return resp
}
