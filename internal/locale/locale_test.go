package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pair(code, name string) [2]string { return [2]string{code, name} }

func TestResolve_Precedence(t *testing.T) {
	set := NewSet(pair("ru", "Русский"), pair("en", "English"), pair("es", "Español"))

	tests := []struct {
		name        string
		requestLang string
		userLang    string
		defaultLang string
		want        string
	}{
		{"request wins", "es", "ru", "en", "es"},
		{"user wins when request unsupported", "xx", "ru", "en", "ru"},
		{"default wins when request and user unsupported", "xx", "yy", "es", "es"},
		{"en fallback when nothing matches", "xx", "yy", "zz", "en"},
		{"absent inputs skipped", "", "", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.requestLang, tt.userLang, tt.defaultLang, set)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SetWithoutEnglish(t *testing.T) {
	set := NewSet(pair("de", "Deutsch"), pair("fr", "Français"))

	// No match anywhere and no "en" in the set: first entry wins.
	assert.Equal(t, "de", Resolve("xx", "yy", "zz", set))
}

func TestResolve_EmptySet(t *testing.T) {
	// Total even for an empty set: a literal code comes back.
	assert.Equal(t, "en", Resolve("ru", "es", "de", NewSet()))
	assert.Equal(t, "en", Resolve("", "", "", nil))
}

func TestSet_OrderIsInsertionOrder(t *testing.T) {
	set := NewSet(pair("zh", "中文"), pair("ar", "العربية"), pair("en", "English"))
	assert.Equal(t, []string{"zh", "ar", "en"}, set.Codes())
	assert.Equal(t, "zh", set.First())
}

func TestSupportedTable(t *testing.T) {
	assert.True(t, Supported.Contains("ru"))
	assert.True(t, Supported.Contains("ja"))
	assert.False(t, Supported.Contains("xx"))
	assert.Equal(t, "ru", Supported.First())
	assert.Equal(t, "English", Supported.DisplayName("en"))
}
