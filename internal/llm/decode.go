package llm

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the JSON object out of a model response. Structured
// output modes normally return bare JSON, but models still occasionally wrap
// it in code fences or a sentence of prose. Field content is never modified.
func extractJSON(text string) []byte {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	// Fast path: already valid JSON.
	if json.Valid([]byte(s)) {
		return []byte(s)
	}

	if obj, ok := firstObject(s); ok {
		return []byte(obj)
	}
	return []byte(s)
}

// firstObject returns the first balanced top-level {...} in s, respecting
// string literals and escapes.
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
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
