// Package store provides the document-store contract the dispatch pipeline
// reads user profiles from and writes delivery status to.
package store

import "context"

// Document is one record's decoded field set.
type Document = map[string]interface{}

// DocumentStore is the key-addressed document collaborator. Get returns
// (nil, nil) for an absent document: "not found" is a valid answer, not an
// error. Update merges the given fields into the document and must leave
// unrelated fields untouched.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields Document) error
}
