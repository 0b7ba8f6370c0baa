// Package request models the notification request record and enforces its
// structural limits before any network call is made.
package request

import (
	"encoding/json"
	"strings"

	"email-dispatch/internal/store"
)

// Engine selector values. "simple" is the compatibility default.
const (
	EngineSimple     = "simple"
	EngineHandlebars = "handlebars"
)

// NotificationRequest is one request record, immutable once decoded. The
// pipeline only ever appends the delivery-status sub-record alongside it.
type NotificationRequest struct {
	Collection     string
	ID             string
	Recipients     []string
	UserID         string
	UserCollection string
	Language       string
	TemplateName   string
	TemplateEngine string
	Subject        string
	Text           string
	HTML           string
	CustomData     map[string]interface{}

	raw store.Document
}

// Raw returns the decoded record as read from the store.
func (r *NotificationRequest) Raw() store.Document {
	return r.raw
}

// Decode builds a NotificationRequest from a raw document. Recipients may
// arrive under "to" or "recipients", as a single string or a list; both are
// coerced to an ordered list. Template name accepts the legacy "template"
// spelling.
func Decode(collection, id string, doc store.Document) *NotificationRequest {
	req := &NotificationRequest{
		Collection: collection,
		ID:         id,
		raw:        doc,
	}

	req.Recipients = coerceRecipients(doc["recipients"])
	if len(req.Recipients) == 0 {
		req.Recipients = coerceRecipients(doc["to"])
	}

	req.UserID = stringField(doc, "userId")
	req.UserCollection = stringField(doc, "userCollection")
	if req.UserCollection == "" {
		req.UserCollection = stringField(doc, "userCollectionName")
	}
	req.Language = stringField(doc, "language")
	req.TemplateName = stringField(doc, "templateName")
	if req.TemplateName == "" {
		req.TemplateName = stringField(doc, "template")
	}
	req.TemplateEngine = stringField(doc, "templateEngine")
	if req.TemplateEngine == "" {
		req.TemplateEngine = EngineSimple
	}
	req.Subject = stringField(doc, "subject")
	req.Text = stringField(doc, "text")
	req.HTML = stringField(doc, "html")

	if custom, ok := doc["customData"].(map[string]interface{}); ok {
		req.CustomData = custom
	}

	return req
}

func coerceRecipients(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringField(doc store.Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

// SanitizeFields returns a copy of the document with credential-looking
// fields masked, for logging.
func SanitizeFields(doc store.Document) store.Document {
	sanitized := make(store.Document, len(doc))
	for k, v := range doc {
		sanitized[k] = v
	}

	for _, field := range []string{"password", "token", "secret", "key"} {
		if _, ok := sanitized[field]; ok {
			sanitized[field] = "***HIDDEN***"
		}
	}

	return sanitized
}

// SerializedSize reports the canonical JSON size of the document in bytes.
// The limit comparison must happen at byte granularity: dividing down to KB
// first would truncate and wave through documents up to 1023 bytes over.
func SerializedSize(doc store.Document) int {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return 0
	}
	return len(encoded)
}
