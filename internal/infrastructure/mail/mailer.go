// Package mail delivers outbound email through a configurable transport.
package mail

import (
	"context"
	"fmt"

	"catalog-system/config"

	"github.com/sirupsen/logrus"
)

const (
	DriverSMTP = "smtp"
	DriverAMQP = "amqp"
	DriverLog  = "log"
)

// Message is a plain-text email sent to every address in To at once.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Mailer sends a single message in one call.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// NewMailer builds the transport selected by MAIL_DRIVER.
func NewMailer(cfg config.Config, log *logrus.Logger) (Mailer, error) {
	switch cfg.Mail.Driver {
	case DriverSMTP, "":
		return NewSMTPMailer(cfg.Mail), nil
	case DriverAMQP:
		return NewAMQPMailer(cfg.AMQP, log)
	case DriverLog:
		return NewLogMailer(log), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", cfg.Mail.Driver)
	}
}
