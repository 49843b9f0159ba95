package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON pulls a JSON payload out of text a model may have
// wrapped in prose or a fenced code block. Already-valid JSON is
// returned unchanged. The repair is purely syntactic and idempotent;
// when no fenced block is found the trimmed input is the best we can do.
func ExtractJSON(text string) string {
	if json.Valid([]byte(text)) {
		return text
	}

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	return strings.TrimSpace(text)
}
