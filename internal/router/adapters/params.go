package adapters

import (
	"log/slog"
	"math"
	"sort"
)

// sampling is the typed set of overridable generation settings. Nil pointers
// are left out of the provider request.
type sampling struct {
	Model            string
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	TopK             *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Stop             []string
	User             string
	Seed             *int
}

type paramKind int

const (
	paramString paramKind = iota
	paramFloat
	paramInt
	paramStop
)

// paramSpec declares the override keys a provider accepts and their types.
type paramSpec map[string]paramKind

// overlay applies params on top of defaults (later wins). Keys not declared in
// spec, or carrying a value of the wrong type, are dropped and returned sorted.
func overlay(provider string, defaults sampling, params map[string]any, spec paramSpec) (sampling, []string) {
	out := defaults
	var dropped []string

	for key, raw := range params {
		kind, ok := spec[key]
		if !ok || !assign(&out, key, kind, raw) {
			dropped = append(dropped, key)
		}
	}

	if len(dropped) > 0 {
		sort.Strings(dropped)
		slog.Debug("dropped parameter overrides", "provider", provider, "keys", dropped)
	}
	return out, dropped
}

func assign(s *sampling, key string, kind paramKind, raw any) bool {
	switch kind {
	case paramString:
		v, ok := raw.(string)
		if !ok || v == "" {
			return false
		}
		switch key {
		case "model":
			s.Model = v
		case "user":
			s.User = v
		default:
			return false
		}
	case paramFloat:
		v, ok := toFloat(raw)
		if !ok {
			return false
		}
		switch key {
		case "temperature":
			s.Temperature = &v
		case "top_p":
			s.TopP = &v
		case "presence_penalty":
			s.PresencePenalty = &v
		case "frequency_penalty":
			s.FrequencyPenalty = &v
		default:
			return false
		}
	case paramInt:
		v, ok := toInt(raw)
		if !ok {
			return false
		}
		switch key {
		case "max_tokens":
			s.MaxTokens = &v
		case "top_k":
			s.TopK = &v
		case "seed":
			s.Seed = &v
		default:
			return false
		}
	case paramStop:
		v, ok := toStop(raw)
		if !ok {
			return false
		}
		s.Stop = v
	default:
		return false
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toInt accepts integral numbers in [0, math.MaxInt32]; larger values would
// overflow provider-side int32 fields.
func toInt(v any) (int, bool) {
	var n float64
	switch x := v.(type) {
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 0, false
	}
	if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func toStop(v any) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

func ptr[T any](v T) *T { return &v }
