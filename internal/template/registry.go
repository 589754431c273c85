package template

// Field describes how a single issue field is produced when a template is
// filled. Exactly one of Template / Value / Name / Key drives the resolved
// value: templated strings substitute {placeholder} tokens from extracted
// data; constant fields fall back value -> name -> key.
type Field struct {
	ID          string `yaml:"id"`
	Template    string `yaml:"template,omitempty"`
	Value       string `yaml:"value,omitempty"`
	Name        string `yaml:"name,omitempty"`
	Key         string `yaml:"key,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Required    bool   `yaml:"required"`
}

// Template is a named card schema with the keywords used to select it.
type Template struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Fields      []Field  `yaml:"fields"`
}

// GlobalConfig carries catalog-wide defaults.
type GlobalConfig struct {
	DefaultProject string            `yaml:"defaultProject"`
	DefaultEpic    string            `yaml:"defaultEpic"`
	CustomFields   map[string]string `yaml:"customFields"`
}

// Registry is an insertion-ordered template catalog.
type Registry struct {
	templates []Template
	byID      map[string]int
	defaultID string
	config    GlobalConfig
}

// DefaultTemplateID is the fallback when no keyword matches any template.
// It must always resolve in the registry.
const DefaultTemplateID = "feature_development"

func newRegistry(templates []Template, defaultID string, cfg GlobalConfig) *Registry {
	r := &Registry{
		templates: templates,
		byID:      make(map[string]int, len(templates)),
		defaultID: defaultID,
		config:    cfg,
	}
	for i, t := range templates {
		r.byID[t.ID] = i
	}
	return r
}

// NewRegistry builds the built-in catalog.
func NewRegistry() *Registry {
	return newRegistry(builtinTemplates(), DefaultTemplateID, GlobalConfig{
		DefaultProject: "PROJ",
		CustomFields: map[string]string{
			"storyPoints": "customfield_10001",
			"sprint":      "customfield_10002",
			"severity":    "customfield_10003",
		},
	})
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (Template, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Template{}, false
	}
	return r.templates[i], true
}

// Default returns the fallback template.
func (r *Registry) Default() Template {
	t, _ := r.Get(r.defaultID)
	return t
}

// All returns the templates in declaration order.
func (r *Registry) All() []Template {
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Config returns the catalog-wide defaults.
func (r *Registry) Config() GlobalConfig { return r.config }

func builtinTemplates() []Template {
	return []Template{
		{
			ID:          "feature_development",
			Name:        "Desenvolvimento de Funcionalidade",
			Description: "Template para criação de cartões de desenvolvimento de novas funcionalidades",
			Keywords:    []string{"desenvolvimento", "funcionalidade", "feature", "implementar", "criar", "desenvolver"},
			Fields: []Field{
				{ID: "project", Key: "PROJ", Required: true},
				{ID: "issuetype", Name: "Tarefa", Required: true},
				{ID: "summary", Template: "[FEATURE] {title}", Placeholder: "Nome da funcionalidade", Required: true},
				{ID: "description", Template: "## Descrição\n{description}\n\n## Critérios de Aceitação\n{acceptance_criteria}\n\n## Observações\n{notes}", Placeholder: "Descrição detalhada da funcionalidade", Required: true},
				{ID: "parent", Key: ""},
				{ID: "priority", Name: "Medium"},
				{ID: "customfield_10001", Name: "Story Points"},
				{ID: "customfield_10002", Name: "Sprint"},
			},
		},
		{
			ID:          "bug_fix",
			Name:        "Correção de Bug",
			Description: "Template para criação de cartões de correção de bugs",
			Keywords:    []string{"bug", "erro", "correção", "corrigir", "problema", "falha"},
			Fields: []Field{
				{ID: "project", Key: "PROJ", Required: true},
				{ID: "issuetype", Name: "Bug", Required: true},
				{ID: "summary", Template: "[BUG] {title}", Placeholder: "Descrição do bug", Required: true},
				{ID: "description", Template: "## Descrição do Problema\n{description}\n\n## Passos para Reproduzir\n{steps_to_reproduce}\n\n## Comportamento Esperado\n{expected_behavior}\n\n## Comportamento Atual\n{actual_behavior}\n\n## Ambiente\n{environment}", Placeholder: "Descrição detalhada do bug", Required: true},
				{ID: "priority", Name: "High"},
				{ID: "customfield_10003", Name: "Severity", Value: "Medium"},
			},
		},
		{
			ID:          "technical",
			Name:        "Tarefa Técnica",
			Description: "Template para criação de cartões de tarefas técnicas",
			Keywords:    []string{"técnica", "refatoração", "melhoria", "otimização", "configuração", "setup"},
			Fields: []Field{
				{ID: "project", Key: "PROJ", Required: true},
				{ID: "issuetype", Name: "Tarefa", Required: true},
				{ID: "summary", Template: "[TECH] {title}", Placeholder: "Nome da tarefa técnica", Required: true},
				{ID: "description", Template: "## Objetivo\n{objective}\n\n## Descrição Técnica\n{technical_description}\n\n## Impacto\n{impact}\n\n## Recursos Necessários\n{resources}", Placeholder: "Descrição da tarefa técnica", Required: true},
				{ID: "priority", Name: "Medium"},
			},
		},
		{
			ID:          "documentation",
			Name:        "Documentação",
			Description: "Template para criação de cartões de documentação",
			Keywords:    []string{"documentação", "documentar", "manual", "guia", "readme"},
			Fields: []Field{
				{ID: "project", Key: "PROJ", Required: true},
				{ID: "issuetype", Name: "Tarefa", Required: true},
				{ID: "summary", Template: "[DOC] {title}", Placeholder: "Título da documentação", Required: true},
				{ID: "description", Template: "## Escopo da Documentação\n{scope}\n\n## Público-Alvo\n{target_audience}\n\n## Conteúdo a ser Documentado\n{content}\n\n## Formato\n{format}", Placeholder: "Descrição da documentação", Required: true},
				{ID: "priority", Name: "Low"},
			},
		},
	}
}
