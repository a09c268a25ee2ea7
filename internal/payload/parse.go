// Package payload recovers the JSON body of backend responses that may carry
// diagnostic text around the object.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned when the body is blank after trimming.
	ErrEmpty = errors.New("backend returned an empty response")
	// ErrInvalidJSON is returned when no parsable object can be found.
	ErrInvalidJSON = errors.New("backend returned invalid JSON")
)

// Parse returns the JSON value held in raw. When raw is not valid JSON as a
// whole, the first balanced top-level object is extracted and returned; text
// before and after it is ignored. Braces inside string literals are skipped.
func Parse(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmpty
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	candidate, ok := firstObject(trimmed)
	if !ok {
		return nil, ErrInvalidJSON
	}
	var probe any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return json.RawMessage(candidate), nil
}

// firstObject returns the substring from the first '{' through the brace
// that brings nesting depth back to zero.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
