package email

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"vitrine/config"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       string
	send     sendFunc
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
		send:     smtp.SendMail,
	}
}

// Enabled reports whether an SMTP host and recipient are set.
func (e *EmailService) Enabled() bool {
	return e != nil && e.host != "" && e.to != ""
}

// SendContactMessage forwards a contact form submission to the site owner.
// The visitor's address goes in Reply-To so the owner can answer directly.
func (e *EmailService) SendContactMessage(msg ContactMessage, siteName string) error {
	if !e.Enabled() {
		return ErrNotConfigured
	}

	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "New message"
	}
	subject = fmt.Sprintf("[%s] %s", siteName, subject)

	body := fmt.Sprintf(`%s <%s> wrote:

%s

---
Sent from the %s contact form
`, msg.Name, msg.Email, msg.Message, siteName)

	from := e.from
	if from == "" {
		from = e.to
	}

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Reply-To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", from, e.to, headerSafe(msg.Email), headerSafe(subject), body)

	var auth smtp.Auth
	if e.user != "" {
		auth = smtp.PlainAuth("", e.user, e.password, e.host)
	}
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	if err := e.send(addr, auth, from, []string{e.to}, []byte(message)); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
