package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var bracedObject = regexp.MustCompile(`(?s)\{.*\}`)

// CleanJSON strips Markdown code-fence wrappers from a model response and
// attempts to parse it as JSON. On parse failure it returns the trimmed raw
// string unchanged, so callers can always invoke it safely and fall back to
// treating the value as opaque text. It never returns an error.
func CleanJSON(raw string) interface{} {
	trimmed := StripFences(raw)

	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed
	}

	// Second chance: scan for the outermost array or object
	if extracted := extractJSONPayload(trimmed); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), &parsed); err == nil {
			return parsed
		}
	}

	return trimmed
}

// ExtractObject pulls the first brace-delimited object out of a model
// response and parses it. The regex pass recovers objects the model wrapped
// in prose. Returns nil when no object can be parsed.
func ExtractObject(raw string) map[string]interface{} {
	trimmed := StripFences(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj
	}

	match := bracedObject.FindString(trimmed)
	if match == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(match), &obj); err != nil {
		return nil
	}
	return obj
}

// StripFences removes Markdown code-fence lines from a response
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "```") {
		return raw
	}

	lines := strings.Split(raw, "\n")
	var kept []string
	inCodeBlock := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		// Fences present but nothing inside them; strip the markers only
		var outside []string
		for _, line := range lines {
			if !strings.HasPrefix(strings.TrimSpace(line), "```") {
				outside = append(outside, line)
			}
		}
		return strings.TrimSpace(strings.Join(outside, "\n"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func extractJSONPayload(s string) string {
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(s, pair[0])
		end := strings.LastIndex(s, pair[1])
		if start != -1 && end != -1 && start < end {
			return s[start : end+1]
		}
	}
	return ""
}
