package types

import "testing"

func TestParseModelID(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"openai", true},
		{"gemini", true},
		{"deepseek", true},
		{"OpenAI", false},
		{"claude", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := ParseModelID(tt.input)
		if ok != tt.valid {
			t.Errorf("ParseModelID(%q) valid = %v, want %v", tt.input, ok, tt.valid)
		}
	}
}

func TestKnownModels(t *testing.T) {
	models := KnownModels()
	if len(models) != 3 {
		t.Fatalf("expected 3 known models, got %d", len(models))
	}
	for _, m := range models {
		if !m.Known() {
			t.Errorf("%s.Known() = false, want true", m)
		}
	}
	if ModelID("mistral").Known() {
		t.Error("expected unknown model to report Known() = false")
	}
}
