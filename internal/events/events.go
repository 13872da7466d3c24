package events

import "time"

// Topics published by the service. Email delivery and other notification
// transports subscribe to these; the service itself never sends email.
const (
	TopicUserInvited            = "user.invited"
	TopicUserRegistered         = "user.registered"
	TopicPasswordResetRequested = "password.reset.requested"
	TopicObservationSaved       = "observation.saved"
)

type UserInvitedEvent struct {
	InvitationID uint      `json:"invitation_id"`
	Email        string    `json:"email"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	InvitedBy    uint      `json:"invited_by"`
}

type UserRegisteredEvent struct {
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	VerificationToken string `json:"verification_token"`
}

type PasswordResetRequestedEvent struct {
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type ObservationSavedEvent struct {
	RecordID      uint `json:"record_id"`
	SessionID     uint `json:"session_id"`
	ParticipantID uint `json:"participant_id"`
	Version       int  `json:"version"`
	SavedBy       uint `json:"saved_by"`
}
