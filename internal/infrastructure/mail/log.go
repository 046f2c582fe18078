package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

func (m *LogMailer) Close() error {
	return nil
}
