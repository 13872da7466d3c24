package services

import (
	"context"
	"log/slog"

	"github.com/arteterapia/workshop-service/internal/events"
	"github.com/arteterapia/workshop-service/internal/models"
)

// NotificationEventService translates domain actions into published events.
// Delivery (email, push, audit trail) is somebody else's job: subscribers on
// the bus pick these up, the service never blocks on them.
type NotificationEventService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewNotificationEventService(publisher events.EventPublisher, logger *slog.Logger) *NotificationEventService {
	return &NotificationEventService{
		publisher: publisher,
		logger:    logger,
	}
}

// NotifyUserInvited publishes the invitation so a mailer can deliver the
// registration link. Publish failures are logged, not propagated: the
// invitation row is already committed.
func (s *NotificationEventService) NotifyUserInvited(ctx context.Context, invitation *models.UserInvitation) {
	event := events.UserInvitedEvent{
		InvitationID: invitation.ID,
		Email:        invitation.Email,
		Token:        invitation.Token,
		ExpiresAt:    invitation.ExpiresAt,
		InvitedBy:    invitation.CreatedByUserID,
	}
	if err := s.publisher.Publish(ctx, events.TopicUserInvited, event); err != nil {
		s.logger.Error("Failed to publish user invited event", "error", err, "invitation_id", invitation.ID)
	}
}

func (s *NotificationEventService) NotifyUserRegistered(ctx context.Context, user *models.User, verificationToken string) {
	event := events.UserRegisteredEvent{
		UserID:            user.ID,
		Username:          user.Username,
		Email:             user.Email,
		VerificationToken: verificationToken,
	}
	if err := s.publisher.Publish(ctx, events.TopicUserRegistered, event); err != nil {
		s.logger.Error("Failed to publish user registered event", "error", err, "user_id", user.ID)
	}
}

func (s *NotificationEventService) NotifyPasswordResetRequested(ctx context.Context, user *models.User, resetToken string) {
	event := events.PasswordResetRequestedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		ResetToken: resetToken,
	}
	if user.ResetTokenExpiry != nil {
		event.ExpiresAt = *user.ResetTokenExpiry
	}
	if err := s.publisher.Publish(ctx, events.TopicPasswordResetRequested, event); err != nil {
		s.logger.Error("Failed to publish password reset event", "error", err, "user_id", user.ID)
	}
}

func (s *NotificationEventService) NotifyObservationSaved(ctx context.Context, record *models.ObservationalRecord, savedBy uint) {
	event := events.ObservationSavedEvent{
		RecordID:      record.ID,
		SessionID:     record.SessionID,
		ParticipantID: record.ParticipantID,
		Version:       record.Version,
		SavedBy:       savedBy,
	}
	if err := s.publisher.Publish(ctx, events.TopicObservationSaved, event); err != nil {
		s.logger.Error("Failed to publish observation saved event", "error", err, "record_id", record.ID)
	}
}
