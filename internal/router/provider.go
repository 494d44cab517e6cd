package router

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/router/adapters"
	"github.com/af-corp/chat-gateway/internal/types"
)

// Registry maps model identifiers to provider adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[types.ModelID]adapters.Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[types.ModelID]adapters.Adapter),
	}
}

func (r *Registry) Register(model types.ModelID, adapter adapters.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[model] = adapter
}

func (r *Registry) Get(model types.ModelID) (adapters.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[model]
	return a, ok
}

// Replace swaps in the adapters of next. Used on config reload so in-flight
// lookups see either the old or the new set, never a mix.
func (r *Registry) Replace(next *Registry) {
	next.mu.RLock()
	fresh := make(map[types.ModelID]adapters.Adapter, len(next.adapters))
	for k, v := range next.adapters {
		fresh[k] = v
	}
	next.mu.RUnlock()

	r.mu.Lock()
	r.adapters = fresh
	r.mu.Unlock()
}

// ModelInfo describes a routable model for listing endpoints.
type ModelInfo struct {
	ID         types.ModelID `json:"id"`
	Provider   string        `json:"provider"`
	Configured bool          `json:"configured"`
}

// Models lists the registered models in a stable order.
func (r *Registry) Models() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModelInfo, 0, len(r.adapters))
	for id, a := range r.adapters {
		out = append(out, ModelInfo{ID: id, Provider: a.Name(), Configured: a.Configured()})
	}
	slices.SortFunc(out, func(a, b ModelInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// BuildFromConfig builds one adapter per configured provider. Entries whose
// key is not a known model identifier are skipped.
func BuildFromConfig(provCfg *config.ProvidersConfig, defaultTimeout time.Duration, lookup adapters.LookupEnv) *Registry {
	registry := NewRegistry()
	for name, cfg := range provCfg.Providers {
		model, ok := types.ParseModelID(name)
		if !ok {
			slog.Warn("skipping provider with unknown model key", "provider", name)
			continue
		}

		client := &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        cfg.MaxConcurrent,
				MaxIdleConnsPerHost: cfg.MaxConcurrent,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		var adapter adapters.Adapter
		switch cfg.Type {
		case "gemini":
			adapter = adapters.NewGeminiAdapter(cfg, client, lookup, defaultTimeout)
		case "deepseek":
			adapter = adapters.NewDeepSeekAdapter(cfg, client, lookup, defaultTimeout)
		default:
			adapter = adapters.NewOpenAIAdapter(cfg, client, lookup, defaultTimeout)
		}
		registry.Register(model, adapter)
	}
	return registry
}
