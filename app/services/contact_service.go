package services

import (
	"fmt"

	"blog/app/mail"
)

// ContactMessage is a submission of the contact form. Subject and Message
// are rejected, not sanitized, when they contain line breaks: both end up
// in the outgoing mail and a CR/LF would let the sender smuggle headers.
type ContactMessage struct {
	Subject string `validate:"required,max=254,nocrlf"`
	Email   string `validate:"required,email"`
	Message string `validate:"required,nocrlf"`
}

// ContactService validates contact submissions and forwards them to the
// mail transport addressed to the blog operator.
type ContactService struct {
	sender    mail.Sender
	recipient string
}

// NewContactService creates a new ContactService
func NewContactService(sender mail.Sender, recipient string) *ContactService {
	return &ContactService{
		sender:    sender,
		recipient: recipient,
	}
}

// Send validates the message and hands it to the mail transport. A
// validation failure sends nothing; a transport failure is returned as is
// and must not be reported as success.
func (s *ContactService) Send(msg ContactMessage) error {
	if err := fieldErrors(validate.Struct(msg)); err != nil {
		return err
	}

	if err := s.sender.Send(msg.Subject, msg.Message, msg.Email, []string{s.recipient}); err != nil {
		return fmt.Errorf("failed to send contact mail: %w", err)
	}
	return nil
}
