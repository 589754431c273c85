package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Analysis is the structured override the provider (or the local heuristic)
// produces for an utterance.
type Analysis struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Confidence  float64 `json:"confidence"`
}

// Source tags where an analysis came from.
type Source string

const (
	SourceAI    Source = "ai"
	SourceLocal Source = "local"
)

// MalformedResponseError means the provider answered but no JSON object
// could be recovered from the reply.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return "ai response is not valid JSON"
}

const analysisSystemPrompt = "Você é um assistente especializado em análise de requisitos para JIRA. Sempre responda em JSON válido."

func analysisPrompt(utterance string) string {
	return fmt.Sprintf(`Analise a seguinte mensagem do usuário e identifique:
1. Tipo de tarefa (bug, feature, documentação, tarefa técnica)
2. Título sugerido (máximo 50 caracteres)
3. Descrição extraída
4. Prioridade sugerida (low, medium, high, critical)
5. Confiança da análise (0-1)

Mensagem: %q

Responda APENAS em formato JSON válido:
{
  "type": "bug|feature|documentation|technical",
  "title": "título sugerido",
  "description": "descrição extraída",
  "priority": "low|medium|high|critical",
  "confidence": 0.8
}`, utterance)
}

// Augment asks the provider for a structured analysis of the utterance,
// failing over to the local heuristic on any error. It never returns an
// error past this boundary; the Source tag is the only visible difference.
func (c *Client) Augment(ctx context.Context, utterance string) (Analysis, Source) {
	if !c.Configured() {
		return FallbackAnalysis(utterance), SourceLocal
	}
	a, err := c.analyzeIntent(ctx, utterance)
	if err != nil {
		return FallbackAnalysis(utterance), SourceLocal
	}
	return a, SourceAI
}

func (c *Client) analyzeIntent(ctx context.Context, utterance string) (Analysis, error) {
	resp, err := c.sendCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: analysisPrompt(utterance)},
	}, 200, 0.3)
	if err != nil {
		return Analysis{}, err
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("no choices in ai response")
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)

	obj, ok := extractJSON(raw)
	if !ok {
		return Analysis{}, &MalformedResponseError{Raw: raw}
	}
	var a Analysis
	if err := json.Unmarshal([]byte(obj), &a); err != nil {
		return Analysis{}, &MalformedResponseError{Raw: raw}
	}
	return a, nil
}

// extractJSON recovers the first JSON object from a reply that may be
// wrapped in prose or code fences: everything between the first '{' and the
// last '}'.
func extractJSON(raw string) (string, bool) {
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return raw[first : last+1], true
}
