package mailx

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrSendFailed    = errors.New("mailx: failed to send email")
	ErrInvalidParams = errors.New("mailx: invalid send parameters")
	ErrInvalidConfig = errors.New("mailx: invalid config")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Mailer sends a single transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound transactional email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string // optional provider-side category
}

// Validate checks the message is deliverable before touching the provider.
func (m Message) Validate() error {
	if m.To == "" || !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidParams, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if m.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// Config holds provider credentials and the platform sender identity.
type Config struct {
	PostmarkServerToken  string
	PostmarkAccountToken string
	FromEmail            string
	ReplyToEmail         string
}
