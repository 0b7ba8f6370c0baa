// internal/template/render.go
package template

import (
	"fmt"
	"regexp"

	"github.com/aymerick/raymond"

	stderrors "email-dispatch/internal/common/errors"
)

// Field names passed to Render, used in error details and to decide
// whether handlebars output keeps its HTML escaping.
const (
	FieldSubject = "subject"
	FieldText    = "text"
	FieldHTML    = "html"
)

var simpleToken = regexp.MustCompile(`\$\{([^}]+)\}`)

// RenderSimple replaces ${identifier} tokens with the stringified context
// value. Absent keys and falsy values leave the token text untouched; this
// non-strict pass-through is load-bearing for existing templates and must
// not be turned into an error.
func RenderSimple(src string, ctx map[string]interface{}) string {
	return simpleToken.ReplaceAllStringFunc(src, func(match string) string {
		key := simpleToken.FindStringSubmatch(match)[1]
		val, ok := ctx[key]
		if !ok || isFalsy(val) {
			return match
		}
		return stringify(val)
	})
}

func isFalsy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	}
	return false
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// RenderHandlebars compiles src as a handlebars template and executes it
// against ctx. Unlike the simple engine this mode is strict: a malformed
// template aborts the request. Escaping applies to the html body only; for
// subject and text the context strings are marked safe so values pass
// through untouched while literal template text is never rewritten.
func RenderHandlebars(src string, ctx map[string]interface{}, field string) (string, error) {
	tpl, err := raymond.Parse(src)
	if err != nil {
		return "", stderrors.NewTemplateCompileError(field, err)
	}

	if field != FieldHTML {
		ctx = safeStrings(ctx).(map[string]interface{})
	}

	out, err := tpl.Exec(ctx)
	if err != nil {
		return "", stderrors.NewTemplateCompileError(field, err)
	}
	return out, nil
}

// safeStrings wraps every string leaf as raymond.SafeString, disabling the
// engine's HTML escaping for that value.
func safeStrings(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return raymond.SafeString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = safeStrings(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = safeStrings(item)
		}
		return out
	}
	return v
}

// Render dispatches on the engine selector. An empty or unknown selector
// falls back to the simple engine, matching the historical behavior of
// records that never set templateEngine.
func Render(src string, ctx map[string]interface{}, engine, field string) (string, error) {
	if src == "" {
		return "", nil
	}
	if engine == "handlebars" {
		return RenderHandlebars(src, ctx, field)
	}
	return RenderSimple(src, ctx), nil
}
