package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
)

// MailConfig holds the SMTP relay settings.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// Sender delivers a composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends exports as attachments.
type Mailer struct {
	sender  Sender
	from    string
	subject string
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewMailer dials the configured relay for every message.
func NewMailer(cfg MailConfig, log *logger.Logger, m *metrics.Metrics) *Mailer {
	return NewMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, log, m)
}

// NewMailerWithSender uses sender instead of an SMTP dialer.
func NewMailerWithSender(sender Sender, cfg MailConfig, log *logger.Logger, m *metrics.Metrics) *Mailer {
	if log == nil {
		log = logger.Nop()
	}
	subject := cfg.Subject
	if subject == "" {
		subject = "Export des dossiers patients"
	}
	return &Mailer{sender: sender, from: cfg.From, subject: subject, log: log, metrics: m}
}

// Send renders list in format and mails it to the given address.
func (m *Mailer) Send(ctx context.Context, to string, format Format, list model.RecordList) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return apperrors.Validation(map[string]string{"to": "recipient is required"})
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Render(format, list)
	if err != nil {
		m.count(format, "error")
		return apperrors.Internal(err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", m.subject)
	msg.SetBody("text/plain", fmt.Sprintf("%d dossier(s) en pièce jointe.", len(list)))
	msg.Attach(format.FileName(),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {format.ContentType()}}),
	)

	if err := m.sender.DialAndSend(msg); err != nil {
		m.count(format, "error")
		m.log.Error(err, "failed to send export", "to", to, "format", string(format))
		return apperrors.Internal(fmt.Errorf("send mail: %w", err))
	}

	m.count(format, "mailed")
	m.log.Info("export mailed", "to", to, "format", string(format), "records", len(list))
	return nil
}

// Render produces the file bytes of format.
func Render(format Format, list model.RecordList) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return Workbook(list)
	case FormatPDF:
		return Document(list)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func (m *Mailer) count(format Format, status string) {
	if m.metrics != nil {
		m.metrics.ExportsTotal.WithLabelValues(string(format), status).Inc()
	}
}
