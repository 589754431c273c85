package intent

import "strings"

type Kind string

const (
	KindCreateCard    Kind = "create_card"
	KindGreeting      Kind = "greeting"
	KindHelp          Kind = "help"
	KindListTemplates Kind = "list_templates"
	KindUnknown       Kind = "unknown"
)

// Result is a classified intent with a fixed per-category confidence.
type Result struct {
	Kind       Kind
	Confidence float64
}

var (
	createKeywords = []string{
		"criar", "preciso", "quero", "gostaria", "desenvolver", "implementar",
		"corrigir", "bug", "erro", "problema", "tarefa", "funcionalidade",
		"feature", "documentar", "documentação",
	}
	greetingKeywords = []string{"oi", "olá", "hello", "bom dia", "boa tarde", "boa noite"}
	helpKeywords     = []string{"ajuda", "help", "como", "o que", "comandos"}
	templateKeywords = []string{"templates", "tipos", "modelos", "categorias"}
)

// Classify runs simple substring heuristics over the lower-cased utterance.
// Categories are tested in a fixed priority order (create > greeting > help
// > list) so that a message mixing a greeting with a create keyword is
// treated as a create request.
func Classify(utterance string) Result {
	input := strings.ToLower(utterance)

	if containsAny(input, createKeywords) {
		return Result{Kind: KindCreateCard, Confidence: 0.8}
	}
	if containsAny(input, greetingKeywords) {
		return Result{Kind: KindGreeting, Confidence: 0.9}
	}
	if containsAny(input, helpKeywords) {
		return Result{Kind: KindHelp, Confidence: 0.7}
	}
	if containsAny(input, templateKeywords) {
		return Result{Kind: KindListTemplates, Confidence: 0.8}
	}
	return Result{Kind: KindUnknown, Confidence: 0.1}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
