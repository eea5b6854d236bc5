// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

const baseStyle = `
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #6366f1; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .amount { font-size: 28px; font-weight: 700; color: #111827; }
        .breakdown { width: 100%; border-collapse: collapse; margin-top: 16px; }
        .breakdown td { padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .breakdown td:last-child { text-align: right; font-variant-numeric: tabular-nums; }
        .failed { color: #dc2626; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
`

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	s.templates["payment_receipt"] = template.Must(template.New("payment_receipt").Parse(`
<!DOCTYPE html>
<html>
<head>` + baseStyle + `</head>
<body>
<div class="container">
    <div class="header"><h2>Payment receipt</h2></div>
    <div class="content">
        <p>Hi {{.ClientName}},</p>
        <p>Your payment for <strong>{{.ProjectTitle}}</strong> has been placed in escrow. It will be released to the creator once you approve the delivery.</p>
        <table class="breakdown">
            <tr><td>Agreed amount</td><td>¥{{.GrossAmount}}</td></tr>
            <tr><td>Platform fee</td><td>¥{{.PlatformFee}}</td></tr>
            <tr><td>Tax</td><td>¥{{.Tax}}</td></tr>
            <tr><td><strong>Total charged</strong></td><td><strong>¥{{.TotalCharged}}</strong></td></tr>
        </table>
    </div>
    <div class="footer">OtoWork</div>
</div>
</body>
</html>`))

	s.templates["payout_released"] = template.Must(template.New("payout_released").Parse(`
<!DOCTYPE html>
<html>
<head>` + baseStyle + `</head>
<body>
<div class="container">
    <div class="header"><h2>Payout released</h2></div>
    <div class="content">
        <p>Hi {{.CreatorName}},</p>
        <p>The client approved your delivery for <strong>{{.ProjectTitle}}</strong>.</p>
        <p class="amount">¥{{.NetPayout}}</p>
        <p>has been added to your available balance and can be withdrawn at any time.</p>
    </div>
    <div class="footer">OtoWork</div>
</div>
</body>
</html>`))

	s.templates["withdrawal_result"] = template.Must(template.New("withdrawal_result").Parse(`
<!DOCTYPE html>
<html>
<head>` + baseStyle + `</head>
<body>
<div class="container">
    <div class="header"><h2>Withdrawal update</h2></div>
    <div class="content">
        <p>Hi {{.CreatorName}},</p>
        {{if .Completed}}
        <p>Your withdrawal of <strong>¥{{.Amount}}</strong> has been transferred.</p>
        {{else}}
        <p class="failed">Your withdrawal of <strong>¥{{.Amount}}</strong> could not be processed{{if .Reason}}: {{.Reason}}{{end}}.</p>
        <p>The reserved amount and fee have been returned to your available balance.</p>
        {{end}}
    </div>
    <div class="footer">OtoWork</div>
</div>
</body>
</html>`))

	s.templates["welcome"] = template.Must(template.New("welcome").Parse(`
<!DOCTYPE html>
<html>
<head>` + baseStyle + `</head>
<body>
<div class="container">
    <div class="header"><h2>Welcome to OtoWork</h2></div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        {{if .IsCreator}}
        <p>Your creator account is ready. Browse open projects and submit your first proposal.</p>
        {{else}}
        <p>Your account is ready. Post a project and start receiving proposals from music creators.</p>
        {{end}}
    </div>
    <div class="footer">OtoWork</div>
</div>
</body>
</html>`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	// Headers
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	// Build recipient list
	recipients := append(email.To, email.CC...)
	recipients = append(recipients, email.BCC...)

	// Create auth
	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		// TLS connection
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		_, err = w.Write(msg.Bytes())
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	// Non-TLS
	return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// PaymentReceiptData holds data for the escrow receipt email
type PaymentReceiptData struct {
	ClientName   string
	ProjectTitle string
	GrossAmount  int64
	PlatformFee  int64
	Tax          int64
	TotalCharged int64
}

// SendPaymentReceipt sends an escrow receipt to the client
func (s *Service) SendPaymentReceipt(to string, data PaymentReceiptData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[OtoWork] Payment receipt for %s", data.ProjectTitle),
		"payment_receipt",
		data,
	)
}

// PayoutReleasedData holds data for the payout released email
type PayoutReleasedData struct {
	CreatorName  string
	ProjectTitle string
	NetPayout    int64
}

// SendPayoutReleased notifies a creator their payout is available
func (s *Service) SendPayoutReleased(to string, data PayoutReleasedData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[OtoWork] Payout released for %s", data.ProjectTitle),
		"payout_released",
		data,
	)
}

// WithdrawalResultData holds data for the withdrawal result email
type WithdrawalResultData struct {
	CreatorName string
	Amount      int64
	Completed   bool
	Reason      string
}

// SendWithdrawalResult notifies a creator about a withdrawal outcome
func (s *Service) SendWithdrawalResult(to string, data WithdrawalResultData) error {
	subject := "[OtoWork] Withdrawal completed"
	if !data.Completed {
		subject = "[OtoWork] Withdrawal failed"
	}
	return s.SendWithTemplate([]string{to}, subject, "withdrawal_result", data)
}

// WelcomeData holds data for the welcome email
type WelcomeData struct {
	Name      string
	IsCreator bool
}

// SendWelcome greets a newly registered user
func (s *Service) SendWelcome(to string, data WelcomeData) error {
	return s.SendWithTemplate([]string{to}, "[OtoWork] Welcome", "welcome", data)
}
