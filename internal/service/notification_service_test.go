package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"catalog-system/internal/domain/entity"
	"catalog-system/internal/infrastructure/mail"
	"catalog-system/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecipients struct {
	mock.Mock
}

func (m *mockRecipients) ListEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	emails, _ := args.Get(0).([]string)
	return emails, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMailer) Close() error {
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNotifySendsOneMessageToAllUsers(t *testing.T) {
	recipients := new(mockRecipients)
	recipients.On("ListEmails", mock.Anything).Return([]string{"user@test.com", "", "user2@test.com"}, nil)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewNotificationService(quietLogger(), recipients, mailer, "noreply@test.com", true)
	err := svc.Notify(context.Background(), "123", "test_product", "user@test.com", "MY_ACTION")
	require.NoError(t, err)

	recipients.AssertNumberOfCalls(t, "ListEmails", 1)
	mailer.AssertNumberOfCalls(t, "Send", 1)

	msg := mailer.Calls[0].Arguments.Get(1).(mail.Message)
	assert.Equal(t, "noreply@test.com", msg.From)
	assert.Equal(t, []string{"user@test.com", "user2@test.com"}, msg.To)
	assert.Equal(t, "Product catalog has been recently changed by: user@test.com", msg.Subject)
	assert.Contains(t, msg.Body, "MY_ACTION")
	assert.Contains(t, msg.Body, "123")
	assert.Contains(t, msg.Body, "test_product")
	assert.Contains(t, msg.Body, "user@test.com")
}

func TestNotifyRecipientLookupFails(t *testing.T) {
	recipients := new(mockRecipients)
	recipients.On("ListEmails", mock.Anything).Return(nil, errors.New("db down"))
	mailer := new(mockMailer)

	svc := service.NewNotificationService(quietLogger(), recipients, mailer, "noreply@test.com", true)
	err := svc.Notify(context.Background(), "123", "test_product", "user@test.com", entity.ChangeActionCreate)

	assert.ErrorIs(t, err, service.ErrNotificationFailed)
	assert.ErrorContains(t, err, "db down")
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifyDispatchFails(t *testing.T) {
	recipients := new(mockRecipients)
	recipients.On("ListEmails", mock.Anything).Return([]string{"user@test.com"}, nil)
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := service.NewNotificationService(quietLogger(), recipients, mailer, "noreply@test.com", false)
	err := svc.Notify(context.Background(), "123", "test_product", "user@test.com", entity.ChangeActionUpdate)

	assert.ErrorIs(t, err, service.ErrNotificationFailed)
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotifyDispatchFailsSilently(t *testing.T) {
	recipients := new(mockRecipients)
	recipients.On("ListEmails", mock.Anything).Return([]string{"user@test.com"}, nil)
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := service.NewNotificationService(quietLogger(), recipients, mailer, "noreply@test.com", true)
	err := svc.Notify(context.Background(), "123", "test_product", "user@test.com", entity.ChangeActionDelete)

	assert.NoError(t, err)
}

func TestNotifySkipsWhenNobodyHasEmail(t *testing.T) {
	recipients := new(mockRecipients)
	recipients.On("ListEmails", mock.Anything).Return([]string{"", ""}, nil)
	mailer := new(mockMailer)

	svc := service.NewNotificationService(quietLogger(), recipients, mailer, "noreply@test.com", false)
	err := svc.Notify(context.Background(), "123", "test_product", "user@test.com", entity.ChangeActionCreate)

	assert.NoError(t, err)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
