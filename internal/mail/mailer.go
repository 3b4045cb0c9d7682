// Package mail delivers outbound notifications. The login flow only sees
// the Mailer interface; SMTP details stay here.
package mail

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPMailer(host string, port int, username, password, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger.With(zap.String("component", "mailer")),
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("mail dispatch failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("Mail dispatched", zap.String("to", to), zap.String("subject", subject))
	return nil
}
