package ai

import (
	"strings"

	"cardflow-backend/internal/template"
)

// FallbackAnalysis is the deterministic local heuristic used whenever the
// provider is unconfigured or fails. It always yields a result.
func FallbackAnalysis(utterance string) Analysis {
	input := strings.ToLower(utterance)

	typ := "feature"
	priority := "medium"
	switch {
	case containsAny(input, "bug", "erro", "problema"):
		typ = "bug"
		priority = "high"
	case containsAny(input, "documentar", "documentação"):
		typ = "documentation"
		priority = "low"
	case containsAny(input, "técnica", "refatorar", "otimizar"):
		typ = "technical"
		priority = "medium"
	}

	if containsAny(input, "crítico", "urgente") {
		priority = "critical"
	} else if containsAny(input, "baixa", "opcional") {
		priority = "low"
	}

	data := template.Extract(utterance)
	return Analysis{
		Type:        typ,
		Title:       data["title"],
		Description: utterance,
		Priority:    priority,
		Confidence:  0.6,
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
