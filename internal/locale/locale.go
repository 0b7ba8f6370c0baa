// Package locale picks a language code through an ordered fallback chain.
package locale

// fallbackLanguage is the hard-coded last resort of the chain.
const fallbackLanguage = "en"

// Set is an ordered set of supported language codes. Insertion order is
// preserved so the fallback chain stays deterministic regardless of how
// the host iterates maps.
type Set struct {
	order []string
	names map[string]string
}

// NewSet builds a set from ordered code/display-name pairs.
func NewSet(pairs ...[2]string) *Set {
	s := &Set{names: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		if _, exists := s.names[p[0]]; exists {
			continue
		}
		s.order = append(s.order, p[0])
		s.names[p[0]] = p[1]
	}
	return s
}

// Supported is the process-wide language table.
var Supported = NewSet(
	[2]string{"ru", "Русский"},
	[2]string{"en", "English"},
	[2]string{"es", "Español"},
	[2]string{"fr", "Français"},
	[2]string{"de", "Deutsch"},
	[2]string{"it", "Italiano"},
	[2]string{"pt", "Português"},
	[2]string{"tr", "Türkçe"},
	[2]string{"zh", "中文"},
	[2]string{"ja", "日本語"},
	[2]string{"ko", "한국어"},
	[2]string{"ar", "العربية"},
)

// Contains reports membership.
func (s *Set) Contains(code string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[code]
	return ok
}

// First returns the first inserted code, or "" for an empty set.
func (s *Set) First() string {
	if s == nil || len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

// DisplayName returns the human-readable name for a code.
func (s *Set) DisplayName(code string) string {
	if s == nil {
		return ""
	}
	return s.names[code]
}

// Codes returns the codes in insertion order.
func (s *Set) Codes() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Resolve picks a language code. Total: unsupported or absent inputs are
// skipped, never reported. Precedence: request override, user profile,
// configured default, "en", the set's first entry, then "en" literally
// when the set itself is empty.
func Resolve(requestLang, userLang, defaultLang string, supported *Set) string {
	if requestLang != "" && supported.Contains(requestLang) {
		return requestLang
	}
	if userLang != "" && supported.Contains(userLang) {
		return userLang
	}
	if defaultLang != "" && supported.Contains(defaultLang) {
		return defaultLang
	}
	if supported.Contains(fallbackLanguage) {
		return fallbackLanguage
	}
	if first := supported.First(); first != "" {
		return first
	}
	return fallbackLanguage
}
