package mail

import (
	"bytes"
	"context"
	"testing"

	"catalog-system/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRaw(t *testing.T) {
	raw := string(buildRaw(Message{
		From:    "noreply@test.com",
		To:      []string{"a@test.com", "b@test.com"},
		Subject: "Hello",
		Body:    "line one\nline two",
	}))

	assert.Contains(t, raw, "From: noreply@test.com\r\n")
	assert.Contains(t, raw, "To: a@test.com, b@test.com\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "\r\n\r\nline one\r\nline two")
}

func TestSMTPMailerRequiresHost(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{})
	err := m.Send(context.Background(), Message{To: []string{"a@test.com"}})
	assert.Error(t, err)
}

func TestNewMailerSelectsDriver(t *testing.T) {
	log := logrus.New()

	m, err := NewMailer(config.Config{Mail: config.MailConfig{Driver: DriverLog}}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = NewMailer(config.Config{Mail: config.MailConfig{Driver: DriverSMTP}}, log)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	_, err = NewMailer(config.Config{Mail: config.MailConfig{Driver: "pigeon"}}, log)
	assert.Error(t, err)
}

func TestLogMailerWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	err := NewLogMailer(log).Send(context.Background(), Message{
		From:    "noreply@test.com",
		To:      []string{"a@test.com"},
		Subject: "Catalog changed",
		Body:    "Summary",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"subject":"Catalog changed"`)
	assert.Contains(t, buf.String(), `"msg":"Summary"`)
}
