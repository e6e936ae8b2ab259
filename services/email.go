package services

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"

	"github.com/domodwyer/mailyak/v3"
)

// EmailConfig holds SMTP delivery settings, read from the environment.
type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailConfigFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USERNAME,
// SMTP_PASSWORD and SMTP_FROM, defaulting the port to 587.
func EmailConfigFromEnv() EmailConfig {
	cfg := EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return cfg
}

// Configured reports whether a host was provided.
func (c EmailConfig) Configured() bool {
	return c.Host != ""
}

// ExportMail is one outgoing selection export email.
type ExportMail struct {
	To      []string
	Subject string
	Body    string
	PDFName string
	PDF     []byte
	CSVName string
	CSV     []byte
}

// BuildExportMail assembles the message with its attachments.
func BuildExportMail(cfg EmailConfig, m ExportMail) (*mailyak.MailYak, error) {
	if len(m.To) == 0 {
		return nil, fmt.Errorf("email: no recipients")
	}
	if len(m.PDF) == 0 {
		return nil, fmt.Errorf("email: empty document attachment")
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	mail := mailyak.New(cfg.Host+":"+cfg.Port, auth)
	mail.From(cfg.From)
	mail.To(m.To...)
	mail.Subject(m.Subject)
	mail.Plain().Set(m.Body)

	mail.AttachWithMimeType(m.PDFName, bytes.NewReader(m.PDF), "application/pdf")
	if len(m.CSV) > 0 {
		mail.AttachWithMimeType(m.CSVName, bytes.NewReader(m.CSV), "text/csv")
	}

	return mail, nil
}

// SendExportMail builds and sends the message.
func SendExportMail(cfg EmailConfig, m ExportMail) error {
	if !cfg.Configured() {
		return fmt.Errorf("email: SMTP not configured")
	}
	mail, err := BuildExportMail(cfg, m)
	if err != nil {
		return err
	}
	if err := mail.Send(); err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}
	return nil
}
