// Package mail sends outgoing mail. The application only depends on the
// Sender interface; the SMTP implementation is the production transport.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a single message. Implementations must either deliver
// the message or return an error; there is no partial success.
type Sender interface {
	Send(subject, body, from string, to []string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port of the relay
}

// NewSMTPSender creates a Sender talking to the relay at addr
func NewSMTPSender(addr string) *SMTPSender {
	return &SMTPSender{Addr: addr}
}

// Send delivers the message via SMTP. Subject and body are assumed to be
// already validated against header injection by the caller.
func (s *SMTPSender) Send(subject, body, from string, to []string) error {
	if err := smtp.SendMail(s.Addr, nil, from, to, message(subject, body, from, to)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func message(subject, body, from string, to []string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		from, strings.Join(to, ", "), subject, body))
}
