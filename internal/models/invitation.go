package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationPending InvitationStatus = "pending"
	InvitationUsed    InvitationStatus = "used"
	InvitationExpired InvitationStatus = "expired"
)

// UserInvitation gates registration: new accounts can only be created against a
// pending, unexpired invitation token.
type UserInvitation struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Email           string     `json:"email" gorm:"not null;index;size:120"`
	Token           string     `json:"token" gorm:"uniqueIndex;not null;size:100"`
	CreatedByUserID uint       `json:"created_by_user_id" gorm:"not null;index"`
	ExpiresAt       time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt          *time.Time `json:"used_at"`
	CreatedAt       time.Time  `json:"created_at"`

	Creator User `json:"-" gorm:"foreignKey:CreatedByUserID"`
}

func (UserInvitation) TableName() string {
	return "user_invitations"
}

// NewUserInvitation builds an invitation with a fresh token and expiry.
func NewUserInvitation(email string, createdBy uint, ttl time.Duration) *UserInvitation {
	return &UserInvitation{
		Email:           email,
		Token:           uuid.NewString(),
		CreatedByUserID: createdBy,
		ExpiresAt:       time.Now().Add(ttl),
	}
}

// Status is derived from used_at and expires_at; it is never stored.
func (inv *UserInvitation) Status() InvitationStatus {
	if inv.UsedAt != nil {
		return InvitationUsed
	}
	if time.Now().After(inv.ExpiresAt) {
		return InvitationExpired
	}
	return InvitationPending
}

// IsValid reports whether the invitation can still be consumed.
func (inv *UserInvitation) IsValid() bool {
	return inv.Status() == InvitationPending
}

// MarkUsed stamps the invitation as consumed.
func (inv *UserInvitation) MarkUsed() {
	now := time.Now()
	inv.UsedAt = &now
}
