// Package mailer delivers quote PDFs over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/quote"
)

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}
}

// Enabled reports whether an SMTP host and sender are configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.FromEmail != ""
}

func (m *Mailer) buildMessage(to string, q quote.Quote, body string, pdf []byte) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, apperr.Validation("Email del destinatario inválido")
	}
	subject := fmt.Sprintf("Tu cotización %s", q.ID)
	if q.Product != "" {
		subject += " • " + q.Product
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	if len(pdf) > 0 {
		msg.AttachReader(fmt.Sprintf("Cotizacion-%s.pdf", q.ID), bytes.NewReader(pdf))
	}
	return msg, nil
}

// SendQuote emails the quote summary with the PDF attached.
func (m *Mailer) SendQuote(ctx context.Context, to string, q quote.Quote, body string, pdf []byte) error {
	if !m.Enabled() {
		return apperr.Unavailable("El envío por email no está configurado")
	}
	msg, err := m.buildMessage(to, q, body, pdf)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "No se pudo enviar el email", err)
	}
	return nil
}
