package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EmailService sends the library's password reset notifications
type EmailService interface {
	SendResetLink(toEmail, toName, resetURL string) error
	SendResetApproved(toEmail, toName, resetURL string) error
	SendResetRejected(toEmail, toName, reason string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	SiteName  string
	// ResetTTL is how long a mailed reset link stays usable
	ResetTTL  time.Duration
}

const defaultResetTTL = 24 * time.Hour

// Message is a single outgoing email
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// transport delivers a rendered message; replaced in tests
type transport func(cfg SMTPConfig, to string, raw []byte) error

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   transport
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) *EmailServiceImpl {
	if config.SiteName == "" {
		config.SiteName = "BookLog"
	}
	if config.ResetTTL <= 0 {
		config.ResetTTL = defaultResetTTL
	}
	return &EmailServiceImpl{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
		send:   smtpTransport,
	}
}

// SendResetLink mails an immediately usable reset link
func (s *EmailServiceImpl) SendResetLink(toEmail, toName, resetURL string) error {
	body := s.layout(toName, fmt.Sprintf(`
				<p>We received a request to reset the password of your %s account.</p>
				%s
				<p>This link expires in %s. If you did not ask for a reset, you can ignore this email.</p>`,
		html.EscapeString(s.config.SiteName), button(resetURL, "Reset Password"), describeTTL(s.config.ResetTTL)))

	return s.Send(Message{To: toEmail, Subject: "Password Reset - " + s.config.SiteName, Body: body, HTML: true})
}

// SendResetApproved tells the requester their identity was verified
func (s *EmailServiceImpl) SendResetApproved(toEmail, toName, resetURL string) error {
	body := s.layout(toName, fmt.Sprintf(`
				<p>Your password reset request has been <strong>approved</strong> by a library administrator.</p>
				%s
				<p>This link expires in %s and can be used once.</p>`,
		button(resetURL, "Set New Password"), describeTTL(s.config.ResetTTL)))

	return s.Send(Message{To: toEmail, Subject: "Password Reset Approved - " + s.config.SiteName, Body: body, HTML: true})
}

// SendResetRejected tells the requester why the request was declined
func (s *EmailServiceImpl) SendResetRejected(toEmail, toName, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "No reason was given."
	}
	body := s.layout(toName, fmt.Sprintf(`
				<p>Your password reset request has been <strong>rejected</strong>.</p>
				<p>Reason: %s</p>
				<p>Please visit the library desk or submit a new request with a clearer identity document.</p>`,
		html.EscapeString(reason)))

	return s.Send(Message{To: toEmail, Subject: "Password Reset Rejected - " + s.config.SiteName, Body: body, HTML: true})
}

// Send delivers msg. Without SMTP credentials only the recipient and
// subject are logged, never the body.
func (s *EmailServiceImpl) Send(msg Message) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", msg.To).
			Str("subject", msg.Subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	if err := s.send(s.config, msg.To, s.render(msg)); err != nil {
		s.logger.Error().Err(err).Str("toEmail", msg.To).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("toEmail", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

func (s *EmailServiceImpl) render(msg Message) []byte {
	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func (s *EmailServiceImpl) layout(toName, content string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">%s</h2>
				<p>Hello %s,</p>%s
				<p>Best regards,<br>The %s Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(s.config.SiteName), html.EscapeString(toName), content, html.EscapeString(s.config.SiteName))
}

// describeTTL renders d for the email body, e.g. "24 hours", "2 days"
// or "30 minutes".
func describeTTL(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d >= 2*day && d%day == 0:
		return plural(int(d/day), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int((d+time.Minute-1)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func button(href, label string) string {
	return fmt.Sprintf(`
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">%s</a>
				</div>
				<p>Or copy this link into your browser: %s</p>`,
		html.EscapeString(href), label, html.EscapeString(href))
}

func smtpTransport(cfg SMTPConfig, to string, raw []byte) error {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	serverAddress := cfg.Host + ":" + strconv.Itoa(cfg.Port)

	if !cfg.UseTLS {
		return smtp.SendMail(serverAddress, auth, cfg.FromEmail, []string{to}, raw)
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}
