package service

import (
	"context"
	"errors"
	"fmt"

	"catalog-system/internal/domain/entity"
	"catalog-system/internal/infrastructure/mail"

	"github.com/sirupsen/logrus"
)

var ErrNotificationFailed = errors.New("sending email failed")

// RecipientSource lists the addresses a catalog change is reported to.
type RecipientSource interface {
	ListEmails(ctx context.Context) ([]string, error)
}

type NotificationService interface {
	Notify(ctx context.Context, resourceID, resourceName, actor string, action entity.ChangeAction) error
}

type notificationService struct {
	log          *logrus.Logger
	recipients   RecipientSource
	mailer       mail.Mailer
	from         string
	failSilently bool
}

func NewNotificationService(
	log *logrus.Logger,
	recipients RecipientSource,
	mailer mail.Mailer,
	from string,
	failSilently bool,
) NotificationService {
	return &notificationService{
		log:          log,
		recipients:   recipients,
		mailer:       mailer,
		from:         from,
		failSilently: failSilently,
	}
}

// Notify mails a change summary to every user with an email on file.
func (s *notificationService) Notify(ctx context.Context, resourceID, resourceName, actor string, action entity.ChangeAction) error {
	emails, err := s.recipients.ListEmails(ctx)
	if err != nil {
		s.log.Warnf("Failed to list notification recipients: %+v", err)
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	receivers := make([]string, 0, len(emails))
	for _, email := range emails {
		if email != "" {
			receivers = append(receivers, email)
		}
	}
	if len(receivers) == 0 {
		s.log.Debug("No notification recipients, skipping email")
		return nil
	}

	msg := mail.Message{
		From:    s.from,
		To:      receivers,
		Subject: Subject(actor),
		Body:    Body(resourceID, resourceName, actor, action),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		if s.failSilently {
			s.log.Warnf("Failed to send notification email (suppressed): %+v", err)
			return nil
		}
		s.log.Warnf("Failed to send notification email: %+v", err)
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	s.log.WithFields(logrus.Fields{
		"action":     action,
		"product":    resourceID,
		"recipients": len(receivers),
	}).Info("Catalog change notification sent")

	return nil
}

func Subject(actor string) string {
	return "Product catalog has been recently changed by: " + actor
}

func Body(resourceID, resourceName, actor string, action entity.ChangeAction) string {
	return fmt.Sprintf(`Summary:
- Action: %s
- Product_id: %s
- Product_name: %s
- Changed by: %s
`, action, resourceID, resourceName, actor)
}
