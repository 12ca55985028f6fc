package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	subject string
	body    string
	from    string
	to      []string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(subject, body, from string, to []string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{subject: subject, body: body, from: from, to: to})
	return nil
}

func TestContactServiceSend(t *testing.T) {
	sender := &fakeSender{}
	service := NewContactService(sender, "operator@example.com")

	err := service.Send(ContactMessage{
		Subject: "Question",
		Email:   "visitor@example.com",
		Message: "How do I subscribe?",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "Question", mail.subject)
	assert.Equal(t, "How do I subscribe?", mail.body)
	assert.Equal(t, "visitor@example.com", mail.from)
	assert.Equal(t, []string{"operator@example.com"}, mail.to)
}

func TestContactServiceValidation(t *testing.T) {
	tests := []struct {
		name  string
		msg   ContactMessage
		field string
	}{
		{
			name:  "missing subject",
			msg:   ContactMessage{Email: "a@b.com", Message: "hi"},
			field: "subject",
		},
		{
			name:  "invalid email",
			msg:   ContactMessage{Subject: "hi", Email: "not-an-email", Message: "hi"},
			field: "email",
		},
		{
			name:  "missing message",
			msg:   ContactMessage{Subject: "hi", Email: "a@b.com"},
			field: "message",
		},
		{
			name:  "newline in subject",
			msg:   ContactMessage{Subject: "hi\nBcc: evil@example.com", Email: "a@b.com", Message: "hi"},
			field: "subject",
		},
		{
			name:  "carriage return in message",
			msg:   ContactMessage{Subject: "hi", Email: "a@b.com", Message: "hi\r\nBcc: evil@example.com"},
			field: "message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			service := NewContactService(sender, "operator@example.com")

			err := service.Send(tt.msg)
			verr, ok := AsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Empty(t, sender.sent, "nothing may be sent on validation failure")
		})
	}
}

func TestContactServiceTransportFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	service := NewContactService(sender, "operator@example.com")

	err := service.Send(ContactMessage{
		Subject: "Question",
		Email:   "visitor@example.com",
		Message: "hello",
	})
	require.Error(t, err)
	_, ok := AsValidation(err)
	assert.False(t, ok, "a transport failure is not a validation error")
}
