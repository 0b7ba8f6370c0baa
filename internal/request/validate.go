// internal/request/validate.go
package request

import (
	"strings"

	stderrors "email-dispatch/internal/common/errors"
)

// Limits carries the configured validation ceilings.
type Limits struct {
	MaxRecipients     int
	MaxDocumentSizeKB int
}

// DefaultLimits mirrors the historical deployment configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxRecipients:     10,
		MaxDocumentSizeKB: 1024,
	}
}

// Validate runs the cheap structural checks in order: size, recipient
// count, then per-address syntax. The first violation wins; no network
// call has happened yet at this point.
func (r *NotificationRequest) Validate(limits Limits) error {
	if err := CheckSize(r.raw, limits.MaxDocumentSizeKB); err != nil {
		return err
	}
	if err := CheckRecipients(r.Recipients, limits.MaxRecipients); err != nil {
		return err
	}
	for _, addr := range r.Recipients {
		if err := CheckAddress(addr); err != nil {
			return err
		}
	}
	return nil
}

// CheckSize fails when the canonical JSON form of the record exceeds the
// KB ceiling, compared in bytes.
func CheckSize(doc map[string]interface{}, limitKB int) error {
	sizeBytes := SerializedSize(doc)
	if sizeBytes > limitKB*1024 {
		return stderrors.NewRequestTooLargeError((sizeBytes+1023)/1024, limitKB)
	}
	return nil
}

// CheckRecipients fails when the list exceeds the configured maximum.
func CheckRecipients(recipients []string, max int) error {
	if len(recipients) > max {
		return stderrors.NewTooManyRecipientsError(len(recipients), max)
	}
	return nil
}

// CheckAddress applies the minimal local@domain.tld shape: no whitespace,
// exactly one "@", and a "." somewhere after it. This is a cheap syntactic
// filter, not full RFC 5322 validation.
func CheckAddress(address string) error {
	if !isValidAddress(address) {
		return stderrors.NewInvalidAddressError(address)
	}
	return nil
}

func isValidAddress(address string) bool {
	if address == "" || strings.ContainsAny(address, " \t\r\n") {
		return false
	}
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}
