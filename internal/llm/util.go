// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanFencedBlock removes a markdown code fence that wraps the entire
// response. Models occasionally fence whole artifacts (```markdown ... ```)
// even when instructed not to; interior fences are left untouched.
func CleanFencedBlock(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	body := strings.TrimPrefix(trimmed, "```")
	// Skip a language identifier on the opening fence line.
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			body = body[idx+1:]
		}
	}

	idx := strings.LastIndex(body, "```")
	if idx < 0 {
		// Opening fence without a closing one: not a wrapped artifact.
		return text
	}
	if strings.TrimSpace(body[idx+3:]) != "" {
		return text
	}

	return strings.TrimSpace(body[:idx])
}
