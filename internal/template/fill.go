package template

import "regexp"

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Fill resolves every field of the template against the extracted data and
// returns the filled card. The result's key set is exactly the template's
// field set. Substitution is a single pass: values never undergo further
// placeholder expansion, and unknown placeholders resolve to the empty
// string.
func Fill(t Template, data Data) map[string]string {
	filled := make(map[string]string, len(t.Fields))
	for _, f := range t.Fields {
		if f.Template != "" {
			filled[f.ID] = placeholderRe.ReplaceAllStringFunc(f.Template, func(m string) string {
				key := m[1 : len(m)-1]
				return data[key]
			})
			continue
		}
		switch {
		case f.Value != "":
			filled[f.ID] = f.Value
		case f.Name != "":
			filled[f.ID] = f.Name
		default:
			filled[f.ID] = f.Key
		}
	}
	return filled
}
