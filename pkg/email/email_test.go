package email

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturingService(t *testing.T) (*EmailService, *[]*email.Email) {
	t.Helper()
	sent := []*email.Email{}
	svc := NewEmailService(EmailConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "mailer@example.com",
		SMTPPassword: "secret",
		FromName:     "Recibos",
	})
	svc.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		sent = append(sent, e)
		return nil
	}
	return svc, &sent
}

func TestSendRequiresConfiguration(t *testing.T) {
	svc := NewEmailService(EmailConfig{})
	assert.False(t, svc.IsConfigured())

	err := svc.Send(&Message{To: []string{"a@example.com"}, Subject: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendRegistrationNotice(t *testing.T) {
	svc, sent := newCapturingService(t)

	err := svc.SendRegistrationNotice("admin@example.com", RegistrationNotice{
		Username:     "jperez",
		Email:        "jperez@example.com",
		FullName:     "Juan Perez",
		RegisteredAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	msg := (*sent)[0]
	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Equal(t, "Recibos <mailer@example.com>", msg.From)
	assert.Contains(t, msg.Subject, "jperez")
	assert.Contains(t, string(msg.HTML), "jperez@example.com")
	assert.Contains(t, string(msg.HTML), "02/01/2026 15:04:05")
}

func TestSendReceiptAttachesPDF(t *testing.T) {
	svc, sent := newCapturingService(t)

	err := svc.SendReceipt("cliente@example.com", ReceiptMail{
		ReceiptNumber: "RECIBO-00000001",
		CustomerName:  "Cliente",
		Total:         "100.00",
	}, []byte("%PDF-1.3"))
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	msg := (*sent)[0]
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "RECIBO-00000001.pdf", msg.Attachments[0].Filename)
	assert.Contains(t, string(msg.HTML), "100.00")
}

func TestSendWrapsTransportErrors(t *testing.T) {
	svc, _ := newCapturingService(t)
	boom := errors.New("connection refused")
	svc.send = func(*email.Email, string, smtp.Auth) error { return boom }

	err := svc.Send(&Message{To: []string{"a@example.com"}, Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, boom)
}
