package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardflow-backend/internal/template"
)

func TestBuildPayloadMapping(t *testing.T) {
	r := template.NewRegistry()
	tpl, ok := r.Get("bug_fix")
	require.True(t, ok)

	filled := template.Fill(tpl, template.Data{"title": "Login quebrado", "description": "Erro 500"})
	payload, err := BuildPayload(tpl, filled, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"key": "PROJ"}, payload.Fields["project"])
	assert.Equal(t, map[string]string{"name": "Bug"}, payload.Fields["issuetype"])
	assert.Equal(t, map[string]string{"name": "High"}, payload.Fields["priority"])
	assert.Equal(t, "[BUG] Login quebrado", payload.Fields["summary"])
	assert.Equal(t, "Medium", payload.Fields["customfield_10003"])
}

func TestBuildPayloadProjectOverride(t *testing.T) {
	r := template.NewRegistry()
	tpl, ok := r.Get("bug_fix")
	require.True(t, ok)

	filled := template.Fill(tpl, template.Data{"title": "x", "description": "y"})
	payload, err := BuildPayload(tpl, filled, "OPS")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "OPS"}, payload.Fields["project"])
}

func TestBuildPayloadOmitsEmptyParent(t *testing.T) {
	r := template.NewRegistry()
	tpl, ok := r.Get("feature_development")
	require.True(t, ok)

	filled := template.Fill(tpl, template.Data{"title": "x", "description": "y"})
	payload, err := BuildPayload(tpl, filled, "")
	require.NoError(t, err)
	_, present := payload.Fields["parent"]
	assert.False(t, present)

	filled["parent"] = "PROJ-42"
	payload, err = BuildPayload(tpl, filled, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "PROJ-42"}, payload.Fields["parent"])
}

func TestBuildPayloadValidatesRequired(t *testing.T) {
	tpl := template.Template{
		ID: "t",
		Fields: []template.Field{
			{ID: "project", Key: "PROJ", Required: true},
			{ID: "summary", Template: "{title}", Required: true},
			{ID: "labels"},
		},
	}

	_, err := BuildPayload(tpl, map[string]string{"project": "PROJ", "summary": "  "}, "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"summary"}, ve.Fields)

	// Optional fields may stay empty.
	payload, err := BuildPayload(tpl, map[string]string{"project": "PROJ", "summary": "ok"}, "")
	require.NoError(t, err)
	assert.Equal(t, "", payload.Fields["labels"])
}
