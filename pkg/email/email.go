package email

import (
	"bytes"
	"fmt"
	"go-restaurant-onboarding/config"
	"html/template"
	"net/smtp"
)

// EmailService sends the e-signature invitation mail via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// SigningInviteData holds the data for the signing-invitation email
type SigningInviteData struct {
	RecipientName string
	CompanyName   string
	SigningURL    string
	ExpiryDate    string
}

// NewEmailService creates a new email service from SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

// signingInviteTemplate is the HTML template for the signing-invitation email
const signingInviteTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your service agreement is ready to sign</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1a7f5a; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; background: #1a7f5a; color: white; padding: 12px 24px;
                  text-decoration: none; border-radius: 4px; margin: 15px 0; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Service Agreement Ready</h1>
        </div>
        <div class="content">
            <p>Hello {{.RecipientName}},</p>
            <p>The service agreement for <strong>{{.CompanyName}}</strong> has been prepared
            and is ready for your electronic signature.</p>
            <p><a class="button" href="{{.SigningURL}}">Review and sign</a></p>
            <p>This link is personal and valid until {{.ExpiryDate}}. Please do not forward it.</p>
        </div>
        <div class="footer">
            <p>If you did not expect this email, you can safely ignore it.</p>
        </div>
    </div>
</body>
</html>`

// SendSigningInvite sends the signing link to the lead's email address
func (s *EmailService) SendSigningInvite(toEmail string, data SigningInviteData) error {
	tmpl, err := template.New("signing_invite").Parse(signingInviteTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("Your service agreement for %s is ready to sign", data.CompanyName)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		toEmail,
		subject,
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
