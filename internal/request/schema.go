// internal/request/schema.go
package request

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "email-dispatch/internal/common/errors"
	"email-dispatch/internal/store"
)

// requestSchema describes the accepted record shape. Recipients may be a
// single address or a list, under either spelling; everything else is
// optional.
const requestSchema = `{
	"type": "object",
	"properties": {
		"to": {
			"anyOf": [
				{"type": "string"},
				{"type": "array", "items": {"type": "string"}}
			]
		},
		"recipients": {
			"anyOf": [
				{"type": "string"},
				{"type": "array", "items": {"type": "string"}}
			]
		},
		"userId":             {"type": "string"},
		"userCollection":     {"type": "string"},
		"userCollectionName": {"type": "string"},
		"language":           {"type": "string"},
		"template":           {"type": "string"},
		"templateName":       {"type": "string"},
		"templateEngine":     {"type": "string", "enum": ["simple", "handlebars"]},
		"subject":            {"type": "string"},
		"text":               {"type": "string"},
		"html":               {"type": "string"},
		"customData":         {"type": "object"}
	},
	"anyOf": [
		{"required": ["to"]},
		{"required": ["recipients"]}
	]
}`

var schemaLoader = gojsonschema.NewStringLoader(requestSchema)

// CheckShape validates the raw record against the request schema before
// any field coercion happens.
func CheckShape(doc store.Document) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return stderrors.NewInvalidRequestError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return stderrors.NewInvalidRequestError(strings.Join(details, "; "))
}
