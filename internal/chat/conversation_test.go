package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardflow-backend/internal/ai"
	"cardflow-backend/internal/jira"
)

type fakeAugmenter struct {
	configured bool
	analysis   ai.Analysis
	source     ai.Source
	calls      int
}

func (f *fakeAugmenter) Configured() bool { return f.configured }

func (f *fakeAugmenter) Augment(ctx context.Context, utterance string) (ai.Analysis, ai.Source) {
	f.calls++
	return f.analysis, f.source
}

type fakeTracker struct {
	configured bool
	testErr    error
	createErr  error
	created    jira.CreatedIssue
	payloads   []jira.IssuePayload
}

func (f *fakeTracker) Configured() bool { return f.configured }

func (f *fakeTracker) TestConnection(ctx context.Context) (jira.User, error) {
	if f.testErr != nil {
		return jira.User{}, f.testErr
	}
	return jira.User{AccountID: "acc-1", DisplayName: "Dev"}, nil
}

func (f *fakeTracker) LoadReferenceData(ctx context.Context) (jira.ReferenceData, error) {
	return jira.ReferenceData{}, nil
}

func (f *fakeTracker) CreateIssue(ctx context.Context, payload jira.IssuePayload) (jira.CreatedIssue, error) {
	f.payloads = append(f.payloads, payload)
	if f.createErr != nil {
		return jira.CreatedIssue{}, f.createErr
	}
	return f.created, nil
}

func (f *fakeTracker) GetIssue(ctx context.Context, key string) (map[string]any, error) {
	return nil, nil
}

func (f *fakeTracker) UpdateIssue(ctx context.Context, key string, payload jira.IssuePayload) error {
	return nil
}

func (f *fakeTracker) LogWork(ctx context.Context, key, timeSpent, comment string) (jira.Worklog, error) {
	return jira.Worklog{}, nil
}

func newTestConversation(opts Options) *Conversation {
	n := 0
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	}
	if opts.NewID == nil {
		opts.NewID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	}
	if opts.RandInt == nil {
		opts.RandInt = func(int) int { return 0 }
	}
	return New(opts)
}

func TestGreetingLeavesNoPendingCard(t *testing.T) {
	c := newTestConversation(Options{})

	out := c.Process(context.Background(), "oi")
	require.Len(t, out, 1)
	assert.Equal(t, greetingReplies[0], out[0].Text)
	assert.Nil(t, c.Pending())
	assert.Len(t, c.Messages(), 2) // user turn + assistant reply
}

func TestCreateStagesPendingCard(t *testing.T) {
	c := newTestConversation(Options{})

	out := c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")
	require.Len(t, out, 1)

	p := c.Pending()
	require.NotNil(t, p)
	assert.Equal(t, "bug_fix", p.TemplateID)
	assert.Equal(t, ai.SourceLocal, p.Source)
	assert.Equal(t, 0.6, p.Confidence)
	assert.Equal(t, "Preciso corrigir um bug na tela de login", p.Data["title"])
	assert.Equal(t, "[BUG] Preciso corrigir um bug na tela de login", p.Filled["summary"])
	assert.Equal(t, "card_preview", out[0].Payload["type"])
	assert.Contains(t, out[0].Text, "60% de confiança (análise local)")
}

func TestCreateReplacesPendingCard(t *testing.T) {
	c := newTestConversation(Options{})

	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")
	require.Equal(t, "bug_fix", c.Pending().TemplateID)

	c.Process(context.Background(), "Quero documentar a API do serviço")
	assert.Equal(t, "documentation", c.Pending().TemplateID)
}

func TestCreateWithAugmentation(t *testing.T) {
	aug := &fakeAugmenter{
		configured: true,
		analysis: ai.Analysis{
			Type:        "feature",
			Title:       "Relatórios gerenciais",
			Description: "Exportar relatórios em PDF",
			Priority:    "high",
			Confidence:  0.9,
		},
		source: ai.SourceAI,
	}
	c := newTestConversation(Options{Augmenter: aug})

	out := c.Process(context.Background(), "Quero desenvolver uma funcionalidade de relatórios")
	p := c.Pending()
	require.NotNil(t, p)
	assert.Equal(t, 1, aug.calls)
	assert.Equal(t, "feature_development", p.TemplateID)
	assert.Equal(t, ai.SourceAI, p.Source)
	assert.Equal(t, "Relatórios gerenciais", p.Data["title"])
	assert.Equal(t, "high", p.Data["priority"])
	assert.Contains(t, out[0].Text, "90% de confiança (IA)")
}

func TestCreateWithUnknownAIType(t *testing.T) {
	aug := &fakeAugmenter{
		configured: true,
		analysis:   ai.Analysis{Type: "epic", Confidence: 0.8},
		source:     ai.SourceAI,
	}
	c := newTestConversation(Options{Augmenter: aug})

	c.Process(context.Background(), "criar um épico de migração")
	require.NotNil(t, c.Pending())
	assert.Equal(t, "feature_development", c.Pending().TemplateID)
}

func TestUnconfiguredAugmenterIsNeverCalled(t *testing.T) {
	aug := &fakeAugmenter{configured: false}
	c := newTestConversation(Options{Augmenter: aug})

	c.Process(context.Background(), "Preciso corrigir um bug no checkout")
	assert.Equal(t, 0, aug.calls)
	require.NotNil(t, c.Pending())
	assert.Equal(t, ai.SourceLocal, c.Pending().Source)
}

func TestEditUpdatesPendingCard(t *testing.T) {
	c := newTestConversation(Options{})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")

	out := c.Process(context.Background(), "alterar título Corrigir login no mobile")
	require.NotNil(t, c.Pending())
	assert.Equal(t, "Corrigir login no mobile", c.Pending().Data["title"])
	assert.Equal(t, "[BUG] Corrigir login no mobile", c.Pending().Filled["summary"])
	assert.Contains(t, out[0].Text, "Título atualizado")

	c.Process(context.Background(), "alterar descrição Só acontece no Safari")
	assert.Equal(t, "Só acontece no Safari", c.Pending().Data["description"])
}

func TestParseEditCommand(t *testing.T) {
	field, value, ok := parseEditCommand("alterar titulo Novo nome")
	assert.True(t, ok)
	assert.Equal(t, "title", field)
	assert.Equal(t, "Novo nome", value)

	field, value, ok = parseEditCommand("  ALTERAR DESCRIÇÃO nova descrição  ")
	assert.True(t, ok)
	assert.Equal(t, "description", field)
	assert.Equal(t, "nova descrição", value)

	_, _, ok = parseEditCommand("alterar título ")
	assert.False(t, ok)

	_, _, ok = parseEditCommand("alterar prioridade alta")
	assert.False(t, ok)
}

func TestCancelClearsPendingCard(t *testing.T) {
	c := newTestConversation(Options{})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")

	out := c.Process(context.Background(), "cancelar")
	assert.Equal(t, replyCancelled, out[0].Text)
	assert.Nil(t, c.Pending())
	assert.Equal(t, 0, c.CardsCreated())
}

func TestConfirmWithoutPendingCard(t *testing.T) {
	c := newTestConversation(Options{})
	out := c.Process(context.Background(), "confirmar")
	// Without a pending card "confirmar" matches no intent keyword.
	require.Len(t, out, 1)
	assert.NotEqual(t, replyNoPendingCard, out[0].Text)
	assert.Equal(t, 0, c.CardsCreated())
}

func TestConfirmSimulatesWhenTrackerUnconfigured(t *testing.T) {
	c := newTestConversation(Options{})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")

	out := c.Process(context.Background(), "confirmar")
	require.Len(t, out, 2)
	assert.Equal(t, "warning", out[0].Payload["type"])
	assert.Equal(t, "card_simulated", out[1].Payload["type"])
	assert.Equal(t, "PROJ-100", out[1].Payload["cardKey"])
	assert.Equal(t, "https://sua-empresa.atlassian.net/browse/PROJ-100", out[1].Payload["cardUrl"])
	assert.Nil(t, c.Pending())
	assert.Equal(t, 1, c.CardsCreated())
}

func TestConfirmSimulatesOnConnectionFailure(t *testing.T) {
	tracker := &fakeTracker{configured: true, testErr: &jira.TransportError{Timeout: true}}
	c := newTestConversation(Options{Tracker: tracker})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")

	out := c.Process(context.Background(), "confirmar")
	require.Len(t, out, 2)
	assert.Equal(t, "error", out[0].Payload["type"])
	assert.Contains(t, out[0].Text, "Erro de conexão")
	assert.Equal(t, "card_simulated", out[1].Payload["type"])
	assert.Nil(t, c.Pending())
	assert.Empty(t, tracker.payloads)
}

func TestConfirmSimulatesOnCreateFailure(t *testing.T) {
	tracker := &fakeTracker{configured: true, createErr: &jira.TransportError{StatusCode: 401, Message: "Unauthorized"}}
	c := newTestConversation(Options{Tracker: tracker})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")

	out := c.Process(context.Background(), "confirmar")
	require.Len(t, out, 2)
	assert.Contains(t, out[0].Text, "Credenciais inválidas")
	assert.Equal(t, "card_simulated", out[1].Payload["type"])
	assert.Nil(t, c.Pending())
	assert.Equal(t, 1, c.CardsCreated())
}

func TestConfirmCreatesIssue(t *testing.T) {
	tracker := &fakeTracker{
		configured: true,
		created:    jira.CreatedIssue{ID: "10001", Key: "PROJ-17", URL: "https://x.atlassian.net/browse/PROJ-17"},
	}
	c := newTestConversation(Options{Tracker: tracker})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")

	out := c.Process(context.Background(), "confirmar")
	require.Len(t, out, 1)
	assert.Equal(t, "card_created", out[0].Payload["type"])
	assert.Equal(t, "PROJ-17", out[0].Payload["cardKey"])
	assert.Nil(t, c.Pending())
	assert.Equal(t, 1, c.CardsCreated())

	require.Len(t, tracker.payloads, 1)
	fields := tracker.payloads[0].Fields
	assert.Equal(t, map[string]string{"key": "PROJ"}, fields["project"])
	assert.Equal(t, map[string]string{"name": "Bug"}, fields["issuetype"])
}

func TestClearCommand(t *testing.T) {
	c := newTestConversation(Options{})
	c.Process(context.Background(), "Preciso corrigir um bug na tela de login.")
	require.NotNil(t, c.Pending())

	out := c.Process(context.Background(), "limpar")
	assert.Equal(t, replyChatCleared, out[0].Text)
	assert.Nil(t, c.Pending())
	require.Len(t, c.Messages(), 1)
	assert.Equal(t, replyChatCleared, c.Messages()[0].Text)
}

func TestMessageLogIsAppendOnly(t *testing.T) {
	c := newTestConversation(Options{})
	c.Process(context.Background(), "oi")
	c.Process(context.Background(), "ajuda")

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, RoleUser, msgs[2].Role)
	assert.Equal(t, RoleAssistant, msgs[3].Role)
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprintf("id-%d", i+1), m.ID)
		assert.False(t, m.Timestamp.IsZero())
	}

	// Mutating the returned slice must not affect the log.
	msgs[0].Text = "mutated"
	assert.NotEqual(t, "mutated", c.Messages()[0].Text)
}

func TestMessageLogIsTrimmed(t *testing.T) {
	c := newTestConversation(Options{MaxMessages: 4})
	for i := 0; i < 5; i++ {
		c.Process(context.Background(), "oi")
	}
	msgs := c.Messages()
	require.Len(t, msgs, 4)
	// Oldest entries dropped first.
	assert.Equal(t, "id-7", msgs[0].ID)
}

func TestListTemplatesAndHelp(t *testing.T) {
	c := newTestConversation(Options{})

	out := c.Process(context.Background(), "quais templates existem?")
	assert.Contains(t, out[0].Text, "Correção de Bug")

	out = c.Process(context.Background(), "ajuda")
	assert.Equal(t, helpReply, out[0].Text)
}

func TestUnknownIntent(t *testing.T) {
	c := newTestConversation(Options{})
	out := c.Process(context.Background(), "xyz")
	assert.Equal(t, unknownReplies[0], out[0].Text)
	assert.Nil(t, c.Pending())
}
