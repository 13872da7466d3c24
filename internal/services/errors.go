package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services layer. Handlers map these to HTTP
// status codes in one place.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrWorkshopNotFound    = errors.New("workshop not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrObservationNotFound = errors.New("observation not found")
	ErrInvitationNotFound  = errors.New("invitation not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrUsernameTaken        = errors.New("username is already taken")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrUserAlreadyInvited   = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotValid   = errors.New("invitation is expired or already used")
	ErrUnknownQuestion      = errors.New("question is not part of the observation catalog")
	ErrFlowExpired          = errors.New("observation flow expired or not found")
	ErrObservationConflict  = errors.New("a concurrent observation was saved for this pair")
	ErrExportNotAvailable   = errors.New("nothing to export for this workshop")
	ErrCannotDeleteLastRole = errors.New("user must keep at least one role")
)

// PermissionError reports a denied operation together with who attempted it
// and on what.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err (or anything it wraps) is a
// PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
