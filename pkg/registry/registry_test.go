package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-dispatch/internal/template"
)

const sampleRegistry = `{
  "version": "1",
  "lastUpdated": "2024-06-01",
  "templates": [
    {
      "name": "welcome",
      "variants": [
        {"language": "es", "subject": "Bienvenido", "text": "Hola ${user.name}"},
        {"language": "en", "subject": "Welcome", "text": "Hi ${user.name}"}
      ]
    }
  ]
}`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplates(t *testing.T) {
	reg, err := LoadTemplates(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	v, ok := template.Resolve(reg, "welcome", "es")
	require.True(t, ok)
	assert.Equal(t, "Bienvenido", v.Subject)

	// Unknown language falls back to english.
	v, ok = template.Resolve(reg, "welcome", "de")
	require.True(t, ok)
	assert.Equal(t, "Welcome", v.Subject)
}

func TestBuild_PreservesVariantOrder(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, `{
  "templates": [
    {
      "name": "promo",
      "variants": [
        {"language": "ru", "subject": "Акция"},
        {"language": "es", "subject": "Promo"}
      ]
    }
  ]
}`))
	require.NoError(t, err)

	built := reg.Build()
	tpl, ok := built.Get("promo")
	require.True(t, ok)
	assert.Equal(t, []string{"ru", "es"}, tpl.Languages())

	// No english variant: the first declared one wins.
	v, ok := tpl.Resolve("de")
	require.True(t, ok)
	assert.Equal(t, "Акция", v.Subject)
}

func TestLoadRegistry_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "not json",
			content: "{",
			wantErr: "parse template registry",
		},
		{
			name:    "unnamed template",
			content: `{"templates": [{"variants": [{"language": "en", "subject": "x"}]}]}`,
			wantErr: "has no name",
		},
		{
			name: "duplicate template",
			content: `{"templates": [
				{"name": "a", "variants": [{"language": "en", "subject": "x"}]},
				{"name": "a", "variants": [{"language": "en", "subject": "x"}]}
			]}`,
			wantErr: `duplicate template "a"`,
		},
		{
			name:    "no variants",
			content: `{"templates": [{"name": "a"}]}`,
			wantErr: "has no variants",
		},
		{
			name:    "duplicate language",
			content: `{"templates": [{"name": "a", "variants": [{"language": "en", "subject": "x"}, {"language": "en", "subject": "y"}]}]}`,
			wantErr: `declares language "en" twice`,
		},
		{
			name:    "empty variant",
			content: `{"templates": [{"name": "a", "variants": [{"language": "en"}]}]}`,
			wantErr: `variant "en" is empty`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRegistry(writeRegistry(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
