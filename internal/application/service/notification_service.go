package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/worker"
	"github.com/sangkips/receipts-api/pkg/email"
)

// Mailer is the part of the email service used for notifications
type Mailer interface {
	IsConfigured() bool
	SendRegistrationNotice(adminEmail string, notice email.RegistrationNotice) error
}

// JobSubmitter queues background work
type JobSubmitter interface {
	Submit(job worker.Job) error
}

// NotificationService sends best-effort emails in the background. Failures
// are logged and never reach the caller.
type NotificationService struct {
	mailer     Mailer
	jobs       JobSubmitter
	adminEmail string
}

// NewNotificationService creates a new notification service
func NewNotificationService(mailer Mailer, jobs JobSubmitter, adminEmail string) *NotificationService {
	return &NotificationService{
		mailer:     mailer,
		jobs:       jobs,
		adminEmail: adminEmail,
	}
}

// NotifyUserRegistered emails the administrator about a new account.
// It is a no-op when SMTP or the admin address is not configured.
func (s *NotificationService) NotifyUserRegistered(user *entity.User) {
	if s == nil || s.mailer == nil || !s.mailer.IsConfigured() || s.adminEmail == "" {
		return
	}

	notice := email.RegistrationNotice{
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		RegisteredAt: user.CreatedAt,
	}
	if notice.RegisteredAt.IsZero() {
		notice.RegisteredAt = time.Now()
	}

	err := s.jobs.Submit(worker.Job{
		Name: "registration-notice",
		Run: func(ctx context.Context) error {
			return s.mailer.SendRegistrationNotice(s.adminEmail, notice)
		},
	})
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("failed to queue registration notice")
	}
}
