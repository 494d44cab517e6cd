package types

// ModelID selects the provider adapter a request is routed to.
type ModelID string

const (
	ModelOpenAI   ModelID = "openai"
	ModelGemini   ModelID = "gemini"
	ModelDeepSeek ModelID = "deepseek"
)

// KnownModels lists every model identifier the gateway accepts, in display order.
func KnownModels() []ModelID {
	return []ModelID{ModelOpenAI, ModelGemini, ModelDeepSeek}
}

// Known reports whether m is one of the accepted identifiers.
func (m ModelID) Known() bool {
	_, ok := ParseModelID(string(m))
	return ok
}

func ParseModelID(s string) (ModelID, bool) {
	switch ModelID(s) {
	case ModelOpenAI, ModelGemini, ModelDeepSeek:
		return ModelID(s), true
	default:
		return "", false
	}
}
