package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/rentfolio/backend/src/config"
	"github.com/username/rentfolio/backend/src/logger"
)

// NewReportMailer selects the delivery backend from configuration. An
// incomplete provider configuration falls back to the mock mailer rather
// than failing startup, so upload and report flows keep working locally.
func NewReportMailer() ReportMailer {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Report mailer will default to mock.")
		return &MockMailer{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing report mailer", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockMailer.")
			return &MockMailer{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunMailer{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockMailer.")
			return &MockMailer{}
		}
		return &SMTPMailer{
			SMTPServer:   config.Cfg.SMTPServer,
			SMTPPort:     config.Cfg.SMTPPort,
			SMTPUser:     config.Cfg.SMTPUser,
			SMTPPassword: config.Cfg.SMTPPassword,
			SenderEmail:  config.Cfg.SenderEmail,
			SenderName:   config.Cfg.SenderName,
		}
	default:
		logger.L.Info("Defaulting to MockMailer.")
		return &MockMailer{}
	}
}

type MailgunMailer struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunMailer) SendReportEmail(to, subject, htmlBody string, attachment []byte, attachmentName string) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)

	message := s.mg.NewMessage(from, subject, "Your monthly statement is attached.", to)
	message.SetHtml(htmlBody)
	message.AddBufferAttachment(attachmentName, attachment)
	message.AddTag("monthly-statement")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send report email via Mailgun", "error", err, "to", to, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Report email sent successfully via Mailgun", "to", to, "id", id, "attachment", attachmentName)
	return nil
}

type SMTPMailer struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
	SenderName   string
}

// SendReportEmail builds a multipart/mixed message by hand: an HTML part
// plus the PDF attachment encoded in base64 with RFC 2045 line wrapping.
func (s *SMTPMailer) SendReportEmail(to, subject, htmlBody string, attachment []byte, attachmentName string) error {
	from := fmt.Sprintf("%s <%s>", s.SenderName, s.SenderEmail)
	boundary := "rentfolio-statement-boundary"

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: application/pdf\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", attachmentName))
	msg.WriteString("\r\n")
	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76])
		msg.WriteString("\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded)
	msg.WriteString("\r\n")
	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.SenderEmail, []string{to}, []byte(msg.String())); err != nil {
		logger.L.Error("Failed to send report email via SMTP", "error", err, "to", to)
		return fmt.Errorf("failed to send report email via SMTP: %w", err)
	}
	logger.L.Info("Report email sent successfully via SMTP", "to", to, "attachment", attachmentName)
	return nil
}

type MockMailer struct{}

func (m *MockMailer) SendReportEmail(to, subject, htmlBody string, attachment []byte, attachmentName string) error {
	logger.L.Info("MockMailer: Would send report email.",
		"to", to, "subject", subject, "attachment", attachmentName, "attachmentBytes", len(attachment))
	return nil
}
