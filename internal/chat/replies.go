package chat

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cardflow-backend/internal/jira"
	"cardflow-backend/internal/template"
)

const (
	replyCancelled     = "Criação de cartão cancelada. Como posso ajudar você agora?"
	replyChatCleared   = "Chat limpo! Como posso ajudar você?"
	replyNoPendingCard = "Não há nenhum cartão pendente para confirmar."

	replyProcessingFailed = "Desculpe, não consegui processar sua solicitação. Pode tentar reformular sua mensagem?"

	replyJiraNotConfigured = "⚠️ **JIRA não configurado**\n\n" +
		"Para criar cartões reais, você precisa configurar a conexão com o JIRA primeiro.\n\n" +
		"**Como configurar:**\n1. Vá em Configurações → JIRA\n2. Preencha URL da instância, email e API token\n3. Teste a conexão\n\n" +
		"Por enquanto, vou simular a criação do cartão."

	helpReply = `Posso ajudar você a criar cartões no JIRA de forma natural! Aqui estão algumas coisas que você pode fazer:

**Criar cartões:**
- "Preciso corrigir um bug na tela de login"
- "Quero desenvolver uma nova funcionalidade de relatórios"
- "Criar uma tarefa técnica para otimizar o banco de dados"

**Outros comandos:**
- "templates" - ver tipos de cartões disponíveis
- "ajuda" - mostrar esta mensagem
- "limpar" - limpar o chat

Basta descrever o que você precisa fazer e eu identificarei o tipo de cartão mais adequado!`
)

var greetingReplies = []string{
	"Olá! Sou seu assistente para gerenciar cartões do JIRA. Como posso ajudar você hoje?",
	"Oi! Estou aqui para ajudar você a criar e gerenciar cartões do JIRA. O que você gostaria de fazer?",
	"Olá! Pronto para criar alguns cartões no JIRA? Me diga o que você precisa!",
}

var unknownReplies = []string{
	`Não entendi muito bem. Você pode me dizer o que gostaria de fazer? Por exemplo: "Preciso criar um cartão para corrigir um bug".`,
	"Desculpe, não compreendi sua solicitação. Tente descrever a tarefa que você quer criar no JIRA.",
	`Hmm, não consegui identificar o que você quer fazer. Pode reformular sua mensagem? Ou digite "ajuda" para ver os comandos disponíveis.`,
}

func pickReply(randInt func(n int) int, replies []string) string {
	return replies[randInt(len(replies))]
}

func listTemplatesReply(r *template.Registry) string {
	var b strings.Builder
	b.WriteString("Aqui estão os tipos de cartões disponíveis:\n\n")
	for i, t := range r.All() {
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, t.Name)
		fmt.Fprintf(&b, "%s\n", t.Description)
		fmt.Fprintf(&b, "*Palavras-chave:* %s\n\n", strings.Join(t.Keywords, ", "))
	}
	b.WriteString("Para criar um cartão, basta descrever sua tarefa usando linguagem natural!")
	return b.String()
}

func cardPreviewReply(p *PendingCard) string {
	source := "análise local"
	if p.Source == "ai" {
		source = "IA"
	}
	priority := p.Data["priority"]
	if priority == "" {
		priority = "Medium"
	}
	return fmt.Sprintf(`Identifiquei que você quer criar um cartão do tipo **%s** com %d%% de confiança (%s).

**Dados extraídos:**
- **Título:** %s
- **Descrição:** %s
- **Prioridade:** %s

Gostaria de confirmar a criação deste cartão ou fazer alguma alteração?

*Comandos disponíveis:*
- "confirmar" - para criar o cartão
- "alterar título [novo título]" - para alterar o título
- "alterar descrição [nova descrição]" - para alterar a descrição
- "cancelar" - para cancelar a criação`,
		p.Template.Name, int(math.Round(p.Confidence*100)), source,
		p.Data["title"], p.Data["description"], priority)
}

func fieldUpdatedReply(field string, p *PendingCard) string {
	label := "Título"
	if field == "description" {
		label = "Descrição"
	}
	return fmt.Sprintf(`%s atualizado! O cartão agora está assim:

- **Título:** %s
- **Descrição:** %s

Digite "confirmar" para criar o cartão, ou faça outra alteração.`,
		label, p.Data["title"], p.Data["description"])
}

func connectionFailedReply(err error) string {
	return fmt.Sprintf("❌ **Erro de conexão com JIRA**\n\n%s\n\n"+
		"Verifique suas configurações e tente novamente.\n\n"+
		"Por enquanto, vou simular a criação do cartão.", err.Error())
}

func validationFailedReply(ve *jira.ValidationError) string {
	return fmt.Sprintf("❌ **Cartão inválido**\n\nCampos obrigatórios não preenchidos: %s\n\n"+
		"Use os comandos de alteração para completar o cartão antes de confirmar.",
		strings.Join(ve.Fields, ", "))
}

// trackerErrorReply maps a submission failure to a user-facing explanation
// keyed by the HTTP status class.
func trackerErrorReply(err error) string {
	msg := "❌ **Erro ao criar cartão no JIRA**\n\n"

	var te *jira.TransportError
	switch {
	case errors.As(err, &te) && te.Timeout:
		msg += "⏱️ **Timeout na conexão**\nA requisição demorou muito. Tente novamente."
	case errors.As(err, &te) && te.StatusCode == 401:
		msg += "🔐 **Credenciais inválidas**\nVerifique seu email e API token nas configurações."
	case errors.As(err, &te) && te.StatusCode == 403:
		msg += "🚫 **Sem permissão**\nVocê não tem permissão para criar cartões neste projeto."
	case errors.As(err, &te) && te.StatusCode == 404:
		msg += "📁 **Projeto não encontrado**\nVerifique se o projeto padrão está correto."
	default:
		msg += fmt.Sprintf("🔧 **Erro técnico:**\n%s", err.Error())
	}

	msg += "\n\n**Sugestões:**\n• Verifique suas configurações do JIRA\n• Teste a conexão novamente\n• Entre em contato com o administrador"
	msg += "\n\n🔄 Criando cartão simulado como alternativa..."
	return msg
}

func cardCreatedReply(p *PendingCard, created jira.CreatedIssue) string {
	return fmt.Sprintf(`🎉 **Cartão criado com sucesso no JIRA!**

**%s** - %s

**Tipo:** %s

🔗 [**Abrir cartão no JIRA**](%s)

**Próximos passos:**
• Atualizar descrição ou campos
• Registrar tempo trabalhado
• Criar outro cartão
• Ver templates disponíveis

Como posso ajudar você agora?`,
		created.Key, p.Data["title"], p.Template.Name, created.URL)
}

func cardSimulatedReply(p *PendingCard, key string) string {
	priority := p.Data["priority"]
	if priority == "" {
		priority = "Medium"
	}
	return fmt.Sprintf(`🎭 **Cartão simulado criado!**

**%s** - %s

**Tipo:** %s
**Status:** Simulado (não criado no JIRA real)

📝 **Nota:** Este é um cartão simulado. Para criar cartões reais, configure a integração com o JIRA nas configurações.

**Dados que seriam enviados:**
• **Título:** %s
• **Descrição:** %s
• **Prioridade:** %s`,
		key, p.Data["title"], p.Template.Name,
		p.Data["title"], p.Data["description"], priority)
}
