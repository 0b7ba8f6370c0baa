// internal/dispatch/status.go
package dispatch

import (
	"time"

	stderrors "email-dispatch/internal/common/errors"
	"email-dispatch/internal/store"
)

// Delivery states. A request record is created in StatusPending by the
// producer; the pipeline moves it through processing into exactly one of
// sent or error per invocation.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSent       = "sent"
	StatusError      = "error"
)

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// processingFields marks the record as picked up. Written before any
// external call so a crashed run is observable as stuck in processing
// rather than silently lost.
func processingFields(now time.Time) store.Document {
	return store.Document{
		"status":    StatusProcessing,
		"startedAt": timestamp(now),
	}
}

// sentFields records a successful delivery, clearing any error left by an
// earlier failed invocation.
func sentFields(messageID string, now time.Time) store.Document {
	return store.Document{
		"status":      StatusSent,
		"completedAt": timestamp(now),
		"messageId":   messageID,
		"error":       nil,
	}
}

// errorFields records a terminal failure for this invocation.
func errorFields(err error, now time.Time) store.Document {
	return store.Document{
		"status":      StatusError,
		"completedAt": timestamp(now),
		"error": map[string]interface{}{
			"message":   err.Error(),
			"code":      string(stderrors.CodeOf(err)),
			"timestamp": timestamp(now),
		},
	}
}
