package adapters

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxSSELineSize bounds a single event line; completions with long deltas
// exceed bufio's 64 KiB default.
const maxSSELineSize = 1024 * 1024

// sseScanner yields the data payloads of a server-sent event stream in
// arrival order. Multi-line data fields are joined with newlines, comments
// and non-data fields are skipped, and the [DONE] sentinel ends the stream.
type sseScanner struct {
	scanner *bufio.Scanner
}

func newSSEScanner(r io.Reader) *sseScanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &sseScanner{scanner: scanner}
}

// Next returns the next payload, or io.EOF when the stream is finished.
func (s *sseScanner) Next() (string, error) {
	var data []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if len(data) > 0 {
				return strings.Join(data, "\n"), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return "", io.EOF
		}
		data = append(data, payload)
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("read event stream: %w", err)
	}
	if len(data) > 0 {
		return strings.Join(data, "\n"), nil
	}
	return "", io.EOF
}
