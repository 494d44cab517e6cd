// Package redact masks credentials in text that leaves the gateway, such as
// provider error payloads kept for diagnostics.
package redact

import (
	"sort"
	"strings"
)

const Mask = "[REDACTED]"

// Detection represents a detected credential in text.
type Detection struct {
	PatternName string
	Start       int // byte offset
	End         int // byte offset
}

// Scanner finds credentials using pre-compiled regex patterns.
type Scanner struct {
	patterns []Pattern
}

func NewScanner() *Scanner {
	return &Scanner{patterns: DefaultPatterns()}
}

// Scan returns every detection in text, ordered by position.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Start < detections[j].Start
	})
	return detections
}

// Redact replaces each detected credential with Mask. Overlapping
// detections collapse into one masked span.
func (s *Scanner) Redact(text string) string {
	detections := s.Scan(text)
	if len(detections) == 0 {
		return text
	}

	var sb strings.Builder
	cursor := 0
	for i, d := range detections {
		if i > 0 && d.Start < cursor {
			cursor = max(cursor, d.End)
			continue
		}
		sb.WriteString(text[cursor:d.Start])
		sb.WriteString(Mask)
		cursor = d.End
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

var defaultScanner = NewScanner()

// String redacts text with the default patterns.
func String(text string) string {
	return defaultScanner.Redact(text)
}
