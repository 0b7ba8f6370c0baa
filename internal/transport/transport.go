// Package transport delivers fully composed messages over a mail provider.
package transport

import (
	"context"
	"strings"
)

// Message is the composed email handed to a Mailer. Text and HTML may each
// be empty; at least one should be set by the time a send is attempted.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// JoinedTo is the comma-joined recipient form used on the wire and in logs.
func (m *Message) JoinedTo() string {
	return strings.Join(m.To, ", ")
}

// Mailer either confirms delivery with a message identifier or fails. The
// pipeline treats every returned error as retriable; implementations do
// not classify failures.
type Mailer interface {
	Send(ctx context.Context, msg *Message) (messageID string, err error)
}
