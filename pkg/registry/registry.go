// Package registry loads a template registry from a JSON file, for
// deployments that override the built-in templates without rebuilding.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"email-dispatch/internal/template"
)

// LoadRegistry reads and validates a JSON registry file.
func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse template registry %s: %w", path, err)
	}
	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("invalid template registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadTemplates is the one-call path from a registry file to a usable
// template provider.
func LoadTemplates(path string) (*template.Registry, error) {
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return reg.Build(), nil
}

// Build converts the registry document into the in-process representation,
// preserving variant declaration order.
func (r *TemplateRegistry) Build() *template.Registry {
	templates := make([]*template.Template, 0, len(r.Templates))
	for _, spec := range r.Templates {
		t := template.New(spec.Name)
		for _, v := range spec.Variants {
			t.AddVariant(v.Language, template.Variant{
				Subject: v.Subject,
				Text:    v.Text,
				HTML:    v.HTML,
			})
		}
		templates = append(templates, t)
	}
	return template.NewRegistry(templates...)
}

func (r *TemplateRegistry) validate() error {
	seen := make(map[string]bool, len(r.Templates))
	for i, spec := range r.Templates {
		if spec.Name == "" {
			return fmt.Errorf("template %d has no name", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate template %q", spec.Name)
		}
		seen[spec.Name] = true

		if len(spec.Variants) == 0 {
			return fmt.Errorf("template %q has no variants", spec.Name)
		}
		langs := make(map[string]bool, len(spec.Variants))
		for _, v := range spec.Variants {
			if v.Language == "" {
				return fmt.Errorf("template %q has a variant without a language", spec.Name)
			}
			if langs[v.Language] {
				return fmt.Errorf("template %q declares language %q twice", spec.Name, v.Language)
			}
			langs[v.Language] = true
			if v.Subject == "" && v.Text == "" && v.HTML == "" {
				return fmt.Errorf("template %q variant %q is empty", spec.Name, v.Language)
			}
		}
	}
	return nil
}
