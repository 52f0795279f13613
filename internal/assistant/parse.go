package assistant

import (
	"encoding/json"
	"strings"
)

// CleanJSONResponse strips markdown code fences that providers like to wrap
// around JSON output even when asked not to.
func CleanJSONResponse(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

// ExtractJSONObject locates the first '{' and the last '}' in raw provider
// text, decodes that slice and verifies every required field is present.
// It is a single best-effort extraction: malformed output is a full miss
// and returns ok=false so the orchestrator can move to the next stage.
// A decode that yields a non-object (bare string, number, array) is rejected
// the same way.
func ExtractJSONObject(raw string, required []string) ([]byte, bool) {
	clean := CleanJSONResponse(raw)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	candidate := clean[start : end+1]

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	for _, field := range required {
		if _, ok := obj[field]; !ok {
			return nil, false
		}
	}
	return []byte(candidate), true
}
