// Package template stores named templates with per-language variants and
// resolves them through a deterministic fallback chain.
package template

// Variant is the language-specific subject/text/html triple. Any field may
// be empty; rendering yields an absent output for an absent source field.
type Variant struct {
	Subject string
	Text    string
	HTML    string
}

// Template is a named template. Variants are kept in declaration order so
// the last fallback tier never depends on map iteration order.
type Template struct {
	Name string

	order    []string
	variants map[string]Variant
}

// New creates an empty template.
func New(name string) *Template {
	return &Template{
		Name:     name,
		variants: make(map[string]Variant),
	}
}

// AddVariant registers a language variant, preserving declaration order.
// Re-adding a language replaces the variant but keeps its original position.
func (t *Template) AddVariant(lang string, v Variant) *Template {
	if _, exists := t.variants[lang]; !exists {
		t.order = append(t.order, lang)
	}
	t.variants[lang] = v
	return t
}

// Languages returns the declared variant languages in order.
func (t *Template) Languages() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Resolve picks a variant: exact language, then "en", then the first
// declared variant. ok is false only for a template with zero variants.
func (t *Template) Resolve(lang string) (Variant, bool) {
	if v, ok := t.variants[lang]; ok {
		return v, true
	}
	if v, ok := t.variants["en"]; ok {
		return v, true
	}
	if len(t.order) > 0 {
		return t.variants[t.order[0]], true
	}
	return Variant{}, false
}

// Provider is the template-store collaborator contract.
type Provider interface {
	Get(name string) (*Template, bool)
}

// Registry is the in-process Provider backed by a static table. Read-only
// after construction, safe for concurrent use.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry builds a registry from templates.
func NewRegistry(templates ...*Template) *Registry {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		r.templates[t.Name] = t
	}
	return r
}

// Get looks a template up by name.
func (r *Registry) Get(name string) (*Template, bool) {
	if name == "" {
		return nil, false
	}
	t, ok := r.templates[name]
	return t, ok
}

// Resolve combines the name lookup and the language fallback. ok is false
// when the name is unknown or the template has no variants; the caller
// decides whether literal request fields can stand in.
func Resolve(p Provider, name, lang string) (Variant, bool) {
	t, ok := p.Get(name)
	if !ok {
		return Variant{}, false
	}
	return t.Resolve(lang)
}
