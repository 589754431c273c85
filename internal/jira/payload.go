package jira

import (
	"strings"

	"cardflow-backend/internal/template"
)

// IssuePayload is the wire shape the tracker expects on issue creation.
type IssuePayload struct {
	Fields map[string]any `json:"fields"`
}

// BuildPayload maps a filled card into the tracker's wire shape. It rejects
// with a ValidationError when any required field of the template resolved
// empty. projectKey, when non-empty, overrides the card's project value.
//
// Mapping rules: project and parent become {key}, issuetype and priority
// become {name}, parent is only emitted when non-empty, customfield_*
// entries pass through verbatim, everything else passes through verbatim.
func BuildPayload(t template.Template, filled map[string]string, projectKey string) (IssuePayload, error) {
	var missing []string
	for _, f := range t.Fields {
		if f.Required && strings.TrimSpace(filled[f.ID]) == "" {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return IssuePayload{}, &ValidationError{Fields: missing}
	}

	payload := IssuePayload{Fields: make(map[string]any, len(filled))}
	for _, f := range t.Fields {
		value := filled[f.ID]
		switch {
		case f.ID == "project":
			key := value
			if projectKey != "" {
				key = projectKey
			}
			payload.Fields["project"] = map[string]string{"key": key}
		case f.ID == "issuetype":
			payload.Fields["issuetype"] = map[string]string{"name": value}
		case f.ID == "priority":
			payload.Fields["priority"] = map[string]string{"name": value}
		case f.ID == "parent":
			if value != "" {
				payload.Fields["parent"] = map[string]string{"key": value}
			}
		default:
			payload.Fields[f.ID] = value
		}
	}
	return payload, nil
}
