package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:50"`
}

func (Role) TableName() string {
	return "roles"
}

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;size:80"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:120"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	// Status
	Active             bool `json:"active" gorm:"not null;default:true"`
	EmailVerified      bool `json:"email_verified" gorm:"not null;default:false"`
	MustChangePassword bool `json:"must_change_password" gorm:"not null;default:false"`

	// One-time tokens
	VerificationToken *string    `json:"-" gorm:"uniqueIndex;size:100"`
	ResetToken        *string    `json:"-" gorm:"uniqueIndex;size:100"`
	ResetTokenExpiry  *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Roles     []Role     `json:"roles" gorm:"many2many:user_roles"`
	Workshops []Workshop `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// GenerateVerificationToken issues a new email verification token.
func (u *User) GenerateVerificationToken() string {
	token := uuid.NewString()
	u.VerificationToken = &token
	return token
}

// VerifyEmail marks the email as verified and clears the verification token.
func (u *User) VerifyEmail() {
	u.EmailVerified = true
	u.VerificationToken = nil
}

// GenerateResetToken issues a password reset token valid for the given duration.
func (u *User) GenerateResetToken(ttl time.Duration) string {
	token := uuid.NewString()
	expiry := time.Now().Add(ttl)
	u.ResetToken = &token
	u.ResetTokenExpiry = &expiry
	return token
}

// VerifyResetToken reports whether the given reset token matches and has not expired.
func (u *User) VerifyResetToken(token string) bool {
	if u.ResetToken == nil || u.ResetTokenExpiry == nil {
		return false
	}
	if *u.ResetToken != token {
		return false
	}
	return time.Now().Before(*u.ResetTokenExpiry)
}

// ClearResetToken invalidates the reset token after use.
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
}

func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
