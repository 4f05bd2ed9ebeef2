package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/models"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
	contactInbox string
	send         sendFunc
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL, contactInbox string) *Service {
	if contactInbox == "" {
		contactInbox = smtpUser
	}
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		frontendURL:  frontendURL,
		contactInbox: contactInbox,
		send:         smtp.SendMail,
	}
}

// ContactMessage is a contact form submission.
type ContactMessage struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Message   string
}

// SendWelcomeEmail greets a newly registered user.
// This method is designed to be called in a goroutine
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, firstName string) error {
	data := struct {
		FirstName string
		SignInURL string
	}{
		FirstName: firstName,
		SignInURL: s.frontendURL + "/sign-in",
	}
	return s.deliver(ctx, "welcome", toEmail, "Welcome to DevEx Technologies", data)
}

// SendContactNotification forwards a contact form submission to the site
// inbox with Reply-To set to the sender.
func (s *Service) SendContactNotification(ctx context.Context, msg ContactMessage) error {
	subject := fmt.Sprintf("New enquiry from %s %s", msg.FirstName, msg.LastName)
	return s.deliver(ctx, "contact", s.contactInbox, subject, msg, "Reply-To: "+msg.Email)
}

// SendPaymentReceipt confirms a verified payment to the payer.
// This method is designed to be called in a goroutine
func (s *Service) SendPaymentReceipt(ctx context.Context, p *models.Payment) error {
	paidAt := time.Now()
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}
	data := struct {
		Name      string
		Plan      string
		Amount    string
		OrderID   string
		PaymentID string
		PaidAt    string
		URL       string
	}{
		Name:      p.Name,
		Plan:      p.Plan,
		Amount:    fmt.Sprintf("%s %.2f", p.Currency, p.Amount),
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		PaidAt:    paidAt.UTC().Format("02 Jan 2006 15:04 MST"),
		URL:       s.frontendURL + "/my-purchase",
	}
	return s.deliver(ctx, "receipt", p.Email, "Your DevEx Technologies receipt", data)
}

func (s *Service) deliver(ctx context.Context, name, to, subject string, data any, extraHeaders ...string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := render(name, data)
	if err != nil {
		logger.Error("failed to render email template", "template", name, "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(to, subject, body, extraHeaders...); err != nil {
		logger.Error("failed to send email", "template", name, "email", to, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent", "template", name, "email", to)
	return nil
}

func (s *Service) sendEmail(to, subject, body string, extraHeaders ...string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	var headers bytes.Buffer
	fmt.Fprintf(&headers, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", s.fromEmail, to, subject)
	for _, h := range extraHeaders {
		headers.WriteString(h + "\r\n")
	}
	headers.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")

	msg := append(headers.Bytes(), []byte(body+"\r\n")...)

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
