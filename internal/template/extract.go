package template

import "strings"

// Data maps field or placeholder names to extracted string values.
type Data map[string]string

const maxTitleLen = 50

// Extract splits an utterance into a provisional title and description.
// Title is the first sentence trimmed to 50 characters; description is the
// remaining sentences rejoined, or the whole utterance when there is only
// one. A heuristic, not a parser.
func Extract(utterance string) Data {
	sentences := strings.FieldsFunc(utterance, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	if len(sentences) == 0 {
		sentences = []string{""}
	}

	title := strings.TrimSpace(sentences[0])
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}

	description := utterance
	if len(sentences) > 1 {
		description = strings.TrimSpace(strings.Join(sentences[1:], ". "))
	}

	return Data{"title": title, "description": description}
}
