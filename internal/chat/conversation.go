package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"cardflow-backend/internal/ai"
	"cardflow-backend/internal/intent"
	"cardflow-backend/internal/jira"
	"cardflow-backend/internal/template"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable entry of the append-only conversation log.
type Message struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Role      Role           `json:"role"`
	Sender    string         `json:"sender"`
	Text      string         `json:"text"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// PendingCard is the single in-flight candidate awaiting confirmation.
// Source records whether the fields came from the local pipeline or the AI
// augmentation call.
type PendingCard struct {
	TemplateID string
	Template   template.Template
	Data       template.Data
	Filled     map[string]string
	Confidence float64
	Source     ai.Source
}

// Augmenter is the slice of the AI adapter the conversation needs.
type Augmenter interface {
	Configured() bool
	Augment(ctx context.Context, utterance string) (ai.Analysis, ai.Source)
}

// Options inject the registry, collaborators and deterministic sources.
type Options struct {
	Registry   *template.Registry
	Augmenter  Augmenter
	Tracker    jira.Tracker
	ProjectKey string

	// MaxMessages caps the log; oldest entries are trimmed first.
	// Zero means the default, negative disables trimming.
	MaxMessages int

	// Injectable sources so tests can assert exact values.
	Now     func() time.Time
	NewID   func() string
	RandInt func(n int) int
}

const defaultMaxMessages = 200

// Conversation drives one serial chat session: an append-only message log
// and a single pending-card slot. Not safe for concurrent use; each session
// owns its own instance.
type Conversation struct {
	registry   *template.Registry
	augmenter  Augmenter
	tracker    jira.Tracker
	projectKey string

	now         func() time.Time
	newID       func() string
	randInt     func(n int) int
	maxMessages int

	messages     []Message
	pending      *PendingCard
	cardsCreated int
}

// aiTypeToTemplate maps the augmentation result's type to a catalog id.
var aiTypeToTemplate = map[string]string{
	"bug":           "bug_fix",
	"feature":       "feature_development",
	"documentation": "documentation",
	"technical":     "technical",
}

func New(opts Options) *Conversation {
	c := &Conversation{
		registry:    opts.Registry,
		augmenter:   opts.Augmenter,
		tracker:     opts.Tracker,
		projectKey:  opts.ProjectKey,
		now:         opts.Now,
		newID:       opts.NewID,
		randInt:     opts.RandInt,
		maxMessages: opts.MaxMessages,
	}
	if c.maxMessages == 0 {
		c.maxMessages = defaultMaxMessages
	}
	if c.registry == nil {
		c.registry = template.NewRegistry()
	}
	if c.projectKey == "" {
		c.projectKey = c.registry.Config().DefaultProject
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.randInt == nil {
		c.randInt = rand.Intn
	}
	return c
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Pending returns the staged card, or nil.
func (c *Conversation) Pending() *PendingCard { return c.pending }

// CardsCreated counts real and simulated creations in this conversation.
func (c *Conversation) CardsCreated() int { return c.cardsCreated }

// Clear drops the log and the pending card.
func (c *Conversation) Clear() []Message {
	c.messages = nil
	c.pending = nil
	return c.reply(replyChatCleared, nil)
}

func (c *Conversation) append(role Role, sender, text string, payload map[string]any) Message {
	msg := Message{
		ID:        c.newID(),
		Timestamp: c.now(),
		Role:      role,
		Sender:    sender,
		Text:      text,
		Payload:   payload,
	}
	c.messages = append(c.messages, msg)
	if c.maxMessages > 0 && len(c.messages) > c.maxMessages {
		c.messages = c.messages[len(c.messages)-c.maxMessages:]
	}
	return msg
}

func (c *Conversation) reply(text string, payload map[string]any) []Message {
	return []Message{c.append(RoleAssistant, "Assistente IA", text, payload)}
}

// Process handles one user turn and returns the assistant messages it
// produced. All transitions run to completion before the next turn.
func (c *Conversation) Process(ctx context.Context, text string) []Message {
	c.append(RoleUser, "Usuário", text, nil)

	trimmed := strings.ToLower(strings.TrimSpace(text))

	// Commands gate the pending card before any re-classification.
	if c.pending != nil {
		switch {
		case trimmed == "confirmar":
			return c.confirm(ctx)
		case trimmed == "cancelar":
			return c.cancel()
		}
		if field, value, ok := parseEditCommand(text); ok {
			return c.edit(field, value)
		}
	}
	if trimmed == "limpar" {
		return c.Clear()
	}

	res := intent.Classify(text)
	switch res.Kind {
	case intent.KindCreateCard:
		return c.handleCreate(ctx, text)
	case intent.KindGreeting:
		return c.reply(pickReply(c.randInt, greetingReplies), nil)
	case intent.KindHelp:
		return c.reply(helpReply, nil)
	case intent.KindListTemplates:
		return c.reply(listTemplatesReply(c.registry), nil)
	default:
		return c.reply(pickReply(c.randInt, unknownReplies), nil)
	}
}

// parseEditCommand recognizes "alterar título <valor>" and
// "alterar descrição <valor>", with unaccented spellings accepted.
func parseEditCommand(text string) (field, value string, ok bool) {
	prefixes := []struct {
		prefix string
		field  string
	}{
		{"alterar título ", "title"},
		{"alterar titulo ", "title"},
		{"alterar descrição ", "description"},
		{"alterar descricao ", "description"},
	}
	src := strings.TrimSpace(text)
	lower := strings.ToLower(src)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p.prefix) {
			v := strings.TrimSpace(src[len(p.prefix):])
			if v == "" {
				return "", "", false
			}
			return p.field, v, true
		}
	}
	return "", "", false
}

// handleCreate stages a new pending card, silently replacing any existing
// one. The AI augmentation path is only attempted with real credentials and
// itself falls back to the local heuristic, so a card is always staged.
func (c *Conversation) handleCreate(ctx context.Context, utterance string) []Message {
	analysis := ai.FallbackAnalysis(utterance)
	source := ai.SourceLocal
	if c.augmenter != nil && c.augmenter.Configured() {
		analysis, source = c.augmenter.Augment(ctx, utterance)
	}

	templateID, ok := aiTypeToTemplate[analysis.Type]
	if !ok {
		templateID = template.DefaultTemplateID
	}
	tmpl, ok := c.registry.Get(templateID)
	if !ok {
		return c.reply(replyProcessingFailed, nil)
	}

	data := template.Data{
		"title":       analysis.Title,
		"description": analysis.Description,
		"priority":    analysis.Priority,
	}
	if data["title"] == "" {
		data["title"] = template.Extract(utterance)["title"]
	}
	if data["description"] == "" {
		data["description"] = utterance
	}
	if data["priority"] == "" {
		data["priority"] = "medium"
	}

	confidence := analysis.Confidence
	if confidence == 0 {
		confidence = 0.7
	}

	filled := template.Fill(tmpl, data)
	c.pending = &PendingCard{
		TemplateID: templateID,
		Template:   tmpl,
		Data:       data,
		Filled:     filled,
		Confidence: confidence,
		Source:     source,
	}

	return c.reply(cardPreviewReply(c.pending), map[string]any{
		"type":          "card_preview",
		"templateId":    templateID,
		"template":      tmpl.Name,
		"extractedData": data,
		"filledCard":    filled,
		"source":        string(source),
	})
}

// edit mutates one extracted field, re-runs the filler and replaces the
// pending card.
func (c *Conversation) edit(field, value string) []Message {
	p := c.pending
	data := template.Data{}
	for k, v := range p.Data {
		data[k] = v
	}
	data[field] = value

	c.pending = &PendingCard{
		TemplateID: p.TemplateID,
		Template:   p.Template,
		Data:       data,
		Filled:     template.Fill(p.Template, data),
		Confidence: p.Confidence,
		Source:     p.Source,
	}

	return c.reply(fieldUpdatedReply(field, c.pending), map[string]any{
		"type":          "card_preview",
		"templateId":    c.pending.TemplateID,
		"template":      c.pending.Template.Name,
		"extractedData": data,
		"filledCard":    c.pending.Filled,
		"source":        string(c.pending.Source),
	})
}

func (c *Conversation) cancel() []Message {
	c.pending = nil
	return c.reply(replyCancelled, nil)
}

// confirm runs the submission flow. Whatever happens, the pending slot is
// empty afterwards and the user gets a terminal outcome.
func (c *Conversation) confirm(ctx context.Context) []Message {
	p := c.pending
	if p == nil {
		return c.reply(replyNoPendingCard, nil)
	}
	defer func() { c.pending = nil }()

	var out []Message

	if c.tracker == nil || !c.tracker.Configured() {
		out = append(out, c.append(RoleAssistant, "Assistente IA", replyJiraNotConfigured, map[string]any{
			"type":   "warning",
			"action": "configure_jira",
		}))
		return append(out, c.simulate(p)...)
	}

	if _, err := c.tracker.TestConnection(ctx); err != nil {
		out = append(out, c.append(RoleAssistant, "Assistente IA", connectionFailedReply(err), map[string]any{
			"type":   "error",
			"action": "configure_jira",
		}))
		return append(out, c.simulate(p)...)
	}

	payload, err := jira.BuildPayload(p.Template, p.Filled, c.projectKey)
	if err != nil {
		var ve *jira.ValidationError
		if errors.As(err, &ve) {
			return append(out, c.reply(validationFailedReply(ve), map[string]any{"type": "error"})...)
		}
		return append(out, c.reply(replyProcessingFailed, map[string]any{"type": "error"})...)
	}

	created, err := c.tracker.CreateIssue(ctx, payload)
	if err != nil {
		out = append(out, c.append(RoleAssistant, "Assistente IA", trackerErrorReply(err), map[string]any{
			"type":   "error",
			"action": "configure_jira",
		}))
		return append(out, c.simulate(p)...)
	}

	c.cardsCreated++
	return append(out, c.reply(cardCreatedReply(p, created), map[string]any{
		"type":    "card_created",
		"cardKey": created.Key,
		"cardUrl": created.URL,
	})...)
}

// simulate fabricates a plausible record so a confirm always reaches a
// terminal state even without a reachable tracker.
func (c *Conversation) simulate(p *PendingCard) []Message {
	key := fmt.Sprintf("%s-%d", c.projectKey, c.randInt(1000)+100)
	url := "https://sua-empresa.atlassian.net/browse/" + key
	c.cardsCreated++
	return c.reply(cardSimulatedReply(p, key), map[string]any{
		"type":    "card_simulated",
		"cardKey": key,
		"cardUrl": url,
		"source":  "simulated",
	})
}
