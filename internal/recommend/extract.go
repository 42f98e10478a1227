package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// validator checks a decoded value. Returns nil if valid.
type validator[T any] func(T) error

// extractJSONArray decodes the first JSON array in raw model output. It
// tolerates markdown code fences and surrounding prose.
func extractJSONArray[T any](raw string, validate validator[T]) (T, error) {
	var zero T

	block := balancedBlock(stripCodeFences(raw), '[', ']')
	if block == "" {
		return zero, fmt.Errorf("no JSON array found in response")
	}

	var result T
	if err := json.Unmarshal([]byte(block), &result); err != nil {
		return zero, fmt.Errorf("decoding JSON array: %w", err)
	}
	if validate != nil {
		if err := validate(result); err != nil {
			return zero, fmt.Errorf("validation failed: %w", err)
		}
	}
	return result, nil
}

// stripCodeFences removes markdown fence lines (```json, ```), keeping
// their content.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// balancedBlock returns the first balanced open...close block in s,
// ignoring delimiters inside JSON strings.
func balancedBlock(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
