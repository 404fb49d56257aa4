package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ResetNotice is what a delivery collaborator needs to send a reset token.
type ResetNotice struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Notifier hands reset tokens to whatever delivers them out of band.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, n ResetNotice) error
}

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// LogNotifier writes the reset token to the service log. It is the only
// delivery this service performs on its own.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (n LogNotifier) NotifyPasswordReset(_ context.Context, notice ResetNotice) error {
	n.Logger.WithFields(logrus.Fields{
		"user_id":    notice.UserID,
		"expires_at": notice.ExpiresAt.UTC().Format(time.RFC3339),
	}).Infof("Password reset token for %s: %s", notice.Email, notice.Token)
	return nil
}

// QueueNotifier publishes an EmailJob for an external delivery worker.
type QueueNotifier struct {
	Publisher Publisher
	Timeout   time.Duration
}

func (n QueueNotifier) NotifyPasswordReset(ctx context.Context, notice ResetNotice) error {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	if err := n.Publisher.PublishJSON(ctx, TemplatePasswordReset, NewPasswordResetJob(notice)); err != nil {
		return fmt.Errorf("publish reset job: %w", err)
	}
	return nil
}

// MultiNotifier fans a notice out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyPasswordReset(ctx context.Context, notice ResetNotice) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyPasswordReset(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
