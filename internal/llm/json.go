package llm

import "strings"

// CleanJSON strips markdown code fences and surrounding prose some models
// wrap around a JSON object.
func CleanJSON(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if strings.HasPrefix(clean, "{") || strings.HasPrefix(clean, "[") {
		return clean
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		return clean[start : end+1]
	}
	return clean
}
