package redact

import "regexp"

// Pattern defines a credential detection pattern.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// DefaultPatterns returns the built-in credential patterns. Provider key
// formats come first so overlapping matches are named after the provider.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			// OpenAI and DeepSeek keys, including the masked form echoed in
			// 401 responses ("sk-abc1*********wxyz").
			Name:  "Provider API Key",
			Regex: regexp.MustCompile(`sk-(?:proj-)?[A-Za-z0-9_*\-]{8,}`),
		},
		{
			Name:  "Google API Key",
			Regex: regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		},
		{
			Name:  "Bearer Token",
			Regex: regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/\-]{8,}=*`),
		},
		{
			Name:  "AWS Access Key",
			Regex: regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		},
		{
			Name:  "GitHub Token",
			Regex: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
		},
		{
			Name:  "Private Key",
			Regex: regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA )?PRIVATE KEY-----`),
		},
		{
			Name:  "JWT Token",
			Regex: regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`),
		},
	}
}
