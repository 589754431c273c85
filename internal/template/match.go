package template

import "strings"

// MatchResult pairs a selected template with the confidence of the match.
type MatchResult struct {
	TemplateID string
	Template   Template
	Confidence float64
}

// Match scans templates in declaration order and returns the first one with
// a keyword contained in the utterance. Confidence is the share of that
// template's keywords present. This is deliberately a first-match policy,
// not a best-overlap comparison across the catalog.
func (r *Registry) Match(utterance string) MatchResult {
	input := strings.ToLower(utterance)
	for _, t := range r.templates {
		for _, kw := range t.Keywords {
			if strings.Contains(input, kw) {
				return MatchResult{
					TemplateID: t.ID,
					Template:   t,
					Confidence: keywordConfidence(input, t.Keywords),
				}
			}
		}
	}
	return MatchResult{TemplateID: r.defaultID, Template: r.Default(), Confidence: 0.1}
}

func keywordConfidence(input string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(input, kw) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}
