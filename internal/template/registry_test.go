package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_ResolveFallbackChain(t *testing.T) {
	tmpl := New("greeting").
		AddVariant("en", Variant{Subject: "Hello"}).
		AddVariant("ru", Variant{Subject: "Привет"})

	tests := []struct {
		lang        string
		wantSubject string
	}{
		{"ru", "Привет"},
		{"en", "Hello"},
		{"fr", "Hello"}, // unsupported language falls back to en
	}

	for _, tt := range tests {
		v, ok := tmpl.Resolve(tt.lang)
		require.True(t, ok, tt.lang)
		assert.Equal(t, tt.wantSubject, v.Subject)
	}
}

func TestTemplate_ResolveWithoutEnglish(t *testing.T) {
	tmpl := New("greeting").
		AddVariant("de", Variant{Subject: "Hallo"}).
		AddVariant("fr", Variant{Subject: "Salut"})

	// No exact match and no en variant: the first declared variant wins,
	// independent of map iteration order.
	v, ok := tmpl.Resolve("ja")
	require.True(t, ok)
	assert.Equal(t, "Hallo", v.Subject)
}

func TestTemplate_ResolveEmpty(t *testing.T) {
	_, ok := New("empty").Resolve("en")
	assert.False(t, ok)
}

func TestTemplate_AddVariantKeepsPosition(t *testing.T) {
	tmpl := New("greeting").
		AddVariant("de", Variant{Subject: "Hallo"}).
		AddVariant("fr", Variant{Subject: "Salut"}).
		AddVariant("de", Variant{Subject: "Moin"})

	assert.Equal(t, []string{"de", "fr"}, tmpl.Languages())

	v, ok := tmpl.Resolve("xx")
	require.True(t, ok)
	assert.Equal(t, "Moin", v.Subject)
}

func TestResolve_UnknownName(t *testing.T) {
	reg := NewRegistry(New("known").AddVariant("en", Variant{Subject: "hi"}))

	_, ok := Resolve(reg, "unknown", "en")
	assert.False(t, ok)

	_, ok = Resolve(reg, "", "en")
	assert.False(t, ok)
}

func TestBuiltinRegistry(t *testing.T) {
	reg := Builtin()

	v, ok := Resolve(reg, "birthday", "en")
	require.True(t, ok)
	assert.Equal(t, "Happy Birthday!", v.Subject)
	assert.Contains(t, v.Text, "{{user.name}}")

	v, ok = Resolve(reg, "verification", "fr")
	require.True(t, ok)
	// fr has no variant, en is the fallback
	assert.Equal(t, "Email Verification", v.Subject)

	v, ok = Resolve(reg, "birthday", "ru")
	require.True(t, ok)
	assert.Equal(t, "С Днем Рождения!", v.Subject)
}
