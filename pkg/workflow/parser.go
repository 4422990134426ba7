package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeModelJSON parses a JSON object out of free-text model output.
// Models wrap JSON in code fences or prose often enough that a strict
// json.Unmarshal on the raw reply is not workable, so this trims fences
// and slices from the first '{' to the last '}' before decoding. The
// caller treats any returned error as "model did not follow the format"
// and falls back to its conservative default.
func DecodeModelJSON(raw string, out interface{}) error {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in model output")
	}

	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}
