package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Default   string       `yaml:"default"`
	Config    GlobalConfig `yaml:"config"`
	Templates []Template   `yaml:"templates"`
}

// LoadRegistry reads a catalog from a YAML file. The file's template order
// is preserved, which also fixes the matching order. The declared default
// id must resolve to one of the listed templates.
func LoadRegistry(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat catalogFile
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return nil, fmt.Errorf("invalid template catalog: %w", err)
	}
	if len(cat.Templates) == 0 {
		return nil, fmt.Errorf("template catalog is empty")
	}
	if cat.Default == "" {
		cat.Default = cat.Templates[0].ID
	}
	found := false
	for _, t := range cat.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template catalog entry without id")
		}
		if t.ID == cat.Default {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("default template %q not present in catalog", cat.Default)
	}
	return newRegistry(cat.Templates, cat.Default, cat.Config), nil
}
