package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		utterance  string
		kind       Kind
		confidence float64
	}{
		{"greeting", "oi", KindGreeting, 0.9},
		{"greeting formal", "Olá, bom dia", KindGreeting, 0.9},
		{"create bug", "Preciso corrigir um bug na tela de login.", KindCreateCard, 0.8},
		{"create feature", "Quero desenvolver uma nova funcionalidade de relatórios", KindCreateCard, 0.8},
		{"help", "ajuda", KindHelp, 0.7},
		{"list templates", "quais templates existem?", KindListTemplates, 0.8},
		{"unknown", "xyz abc", KindUnknown, 0.1},
		{"empty", "", KindUnknown, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.utterance)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.confidence, res.Confidence)
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A greeting mixed with a create keyword is a create request.
	res := Classify("Olá! Preciso corrigir um problema urgente")
	assert.Equal(t, KindCreateCard, res.Kind)

	// A greeting mixed with a help keyword is still a greeting.
	res = Classify("olá, como vai?")
	assert.Equal(t, KindGreeting, res.Kind)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	res := Classify("PRECISO CORRIGIR UM BUG")
	assert.Equal(t, KindCreateCard, res.Kind)
}
