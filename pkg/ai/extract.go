// pkg/ai/extract.go
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonObjectPattern finds the outermost brace-delimited blob in free text
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSONObject pulls a JSON object out of a model response using an
// ordered list of strategies: direct parse, code-fence stripping, then a
// regex-extracted blob. Providers wrap structured answers in free text
// often enough that a single parse attempt is not good enough.
func extractJSONObject(text string) (map[string]interface{}, bool) {
	candidates := []string{strings.TrimSpace(text)}

	if fenced := stripCodeFences(text); fenced != "" {
		candidates = append(candidates, fenced)
	}

	if blob := jsonObjectPattern.FindString(text); blob != "" {
		candidates = append(candidates, blob)
	}

	for _, candidate := range candidates {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, true
		}
	}

	return nil, false
}

// stripCodeFences removes a surrounding markdown code fence, if any
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// extractMappings recovers a header-to-field map from a response. JSON is
// preferred; when that fails, a line-oriented scan pairs each header with
// the first available field mentioned on the same line.
func extractMappings(text string, headers, availableFields []string) map[string]string {
	if parsed, ok := extractJSONObject(text); ok {
		mappings := make(map[string]string, len(parsed))
		for header, value := range parsed {
			if s, ok := value.(string); ok {
				mappings[header] = s
			}
		}
		if len(mappings) > 0 {
			return mappings
		}
	}

	// Last-resort text scan
	mappings := make(map[string]string, len(headers))
	lines := strings.Split(strings.ToLower(text), "\n")
	for _, header := range headers {
		for _, line := range lines {
			if !strings.Contains(line, strings.ToLower(header)) {
				continue
			}
			for _, field := range availableFields {
				if strings.Contains(line, strings.ToLower(field)) {
					mappings[header] = field
					break
				}
			}
			if _, ok := mappings[header]; ok {
				break
			}
		}
	}

	return mappings
}

// extractSuggestion recovers a single suggested value from a response.
// The second return is false when the provider explicitly declined or
// nothing usable could be extracted.
func extractSuggestion(text string) (string, bool) {
	if parsed, ok := extractJSONObject(text); ok {
		value, present := parsed["suggestion"]
		if !present || value == nil {
			return "", false
		}
		if s, ok := value.(string); ok {
			return normalizeSuggestion(s)
		}
		return "", false
	}

	// Bare-value fallback: accept a short single-line answer
	trimmed := strings.Trim(strings.TrimSpace(text), `"'`)
	if trimmed == "" || strings.ContainsAny(trimmed, "\n") || len(trimmed) > 200 {
		return "", false
	}
	return normalizeSuggestion(trimmed)
}

func normalizeSuggestion(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToUpper(trimmed) {
	case "", "NULL", "NONE", "NO FIX":
		return "", false
	}
	return trimmed, true
}
