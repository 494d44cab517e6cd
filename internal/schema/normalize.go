package schema

import (
	"maps"
	"strings"
)

// NormalizeContent returns a copy of payload in which every message object's
// content is trimmed of surrounding whitespace, and absent or null content is
// replaced with the empty string. Elements that are not objects are left for
// Validate to report. The input is not modified.
func NormalizeContent(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := maps.Clone(payload)

	msgs, ok := payload["messages"].([]any)
	if !ok {
		return out
	}

	normalized := make([]any, len(msgs))
	for i, m := range msgs {
		obj, ok := m.(map[string]any)
		if !ok {
			normalized[i] = m
			continue
		}
		cp := maps.Clone(obj)
		switch c := obj["content"].(type) {
		case nil:
			cp["content"] = ""
		case string:
			cp["content"] = strings.TrimSpace(c)
		}
		normalized[i] = cp
	}
	out["messages"] = normalized
	return out
}
