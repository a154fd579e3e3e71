package llm

import "strings"

// CleanJSONBlock strips markdown fences and any prose around the first JSON
// object or array in a model response.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language identifier on the fence line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := strings.TrimSpace(text[:idx])
			if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text
	}
	return text[start : end+1]
}
