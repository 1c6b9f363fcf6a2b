package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
)

// ErrNotConfigured is returned when SMTP credentials are missing
var ErrNotConfigured = errors.New("email: SMTP is not configured")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	AppName      string
}

// Attachment is a file sent along with a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single outgoing email
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// sendFunc matches (*email.Email).Send so tests can capture outgoing mail
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	if config.AppName == "" {
		config.AppName = "Receipts"
	}
	return &EmailService{
		config: config,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// IsConfigured reports whether enough SMTP settings exist to send mail
func (s *EmailService) IsConfigured() bool {
	return s.config.SMTPHost != "" && s.config.SMTPUsername != "" && s.config.SMTPPassword != ""
}

// Send delivers a message over SMTP
func (s *EmailService) Send(msg *Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("email: message has no recipients")
	}

	e := email.NewEmail()
	e.From = s.from()
	e.To = msg.To
	e.Subject = msg.Subject
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}
	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return fmt.Errorf("email: attach %s: %w", a.Filename, err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		return fmt.Errorf("email: send to %v: %w", msg.To, err)
	}
	return nil
}

func (s *EmailService) from() string {
	address := s.config.FromEmail
	if address == "" {
		address = s.config.SMTPUsername
	}
	if s.config.FromName == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", s.config.FromName, address)
}

// RegistrationNotice is the data rendered into the new-user alert
type RegistrationNotice struct {
	Username     string
	Email        string
	FullName     string
	RegisteredAt time.Time
}

// SendRegistrationNotice tells the administrator that a new account was created
func (s *EmailService) SendRegistrationNotice(adminEmail string, notice RegistrationNotice) error {
	body, err := s.render(registrationTemplate, notice)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.Send(&Message{
		To:      []string{adminEmail},
		Subject: fmt.Sprintf("Nuevo usuario registrado - %s", notice.Username),
		HTML:    body,
	})
}

// ReceiptMail is the data rendered into a receipt delivery email
type ReceiptMail struct {
	ReceiptNumber string
	CustomerName  string
	CompanyName   string
	Total         string
}

// SendReceipt emails a rendered receipt PDF
func (s *EmailService) SendReceipt(to string, data ReceiptMail, pdf []byte) error {
	body, err := s.render(receiptTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.Send(&Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Recibo %s", data.ReceiptNumber),
		HTML:    body,
		Attachments: []Attachment{{
			Filename:    data.ReceiptNumber + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
}

func (s *EmailService) render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		AppName string
		Data    interface{}
	}{
		AppName: s.config.AppName,
		Data:    data,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var registrationTemplate = template.Must(template.New("registration").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string { return t.Format("02/01/2006 15:04:05") },
}).Parse(`
<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Nuevo usuario</title></head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="background-color: #2563eb; padding: 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 30px;">
                <h2 style="color: #1a1a2e; margin: 0 0 20px 0;">Nuevo usuario registrado</h2>
                <p style="color: #4a5568;"><strong>Usuario:</strong> {{.Data.Username}}</p>
                <p style="color: #4a5568;"><strong>Correo:</strong> {{.Data.Email}}</p>
                {{if .Data.FullName}}<p style="color: #4a5568;"><strong>Nombre:</strong> {{.Data.FullName}}</p>{{end}}
                <p style="color: #4a5568;"><strong>Fecha:</strong> {{stamp .Data.RegisteredAt}}</p>
            </td>
        </tr>
    </table>
</body>
</html>
`))

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Recibo</title></head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="padding: 30px;">
                <h2 style="color: #1a1a2e; margin: 0 0 20px 0;">{{if .Data.CompanyName}}{{.Data.CompanyName}}{{else}}{{.AppName}}{{end}}</h2>
                <p style="color: #4a5568;">Estimado(a) {{.Data.CustomerName}},</p>
                <p style="color: #4a5568;">Adjuntamos el recibo <strong>{{.Data.ReceiptNumber}}</strong> por un total de <strong>{{.Data.Total}}</strong>.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`))
