// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock isolates the JSON document in a model response. LLMs often
// wrap JSON in ```json ... ``` blocks or add conversational preamble and
// trailing text even when instructed not to; both are stripped here.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			// If first line looks like a language identifier (no spaces, short), skip it
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// Handle preamble text before a bare JSON document, and trailing chatter
	// after it. A fence not at the start of the response lands here too.
	if start := strings.IndexAny(text, "{["); start >= 0 {
		rest := text[start:]
		var doc string
		if rest[0] == '{' {
			doc = extractJSONObject(rest)
		} else {
			doc = extractJSONArray(rest)
		}
		if doc != "" {
			return doc
		}
	}

	return text
}

// extractJSONObject returns the first complete JSON object at the start of
// text, or "" when text does not begin with one or it never closes.
func extractJSONObject(text string) string {
	return extractDelimited(text, '{', '}')
}

// extractJSONArray returns the first complete JSON array at the start of
// text, or "" when text does not begin with one or it never closes.
func extractJSONArray(text string) string {
	return extractDelimited(text, '[', ']')
}

// extractDelimited scans for the matching close delimiter, tracking string
// state so delimiters and escaped quotes inside values do not end the scan.
func extractDelimited(text string, open, close byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
