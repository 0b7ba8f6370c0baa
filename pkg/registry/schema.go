// pkg/registry/schema.go
package registry

// TemplateRegistry is the on-disk registry document. Variants are a list,
// not a map, because their declaration order is the last resolution
// fallback tier.
type TemplateRegistry struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated"`
	Templates   []TemplateSpec `json:"templates"`
}

type TemplateSpec struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Variants    []VariantSpec `json:"variants"`
}

type VariantSpec struct {
	Language string `json:"language"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
}
