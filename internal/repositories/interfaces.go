package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type WorkshopFilters struct {
	OwnerID   *uint      `json:"owner_id"`
	Name      *string    `json:"name"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "name"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type InvitationFilters struct {
	Email           *string `json:"email"`
	CreatedByUserID *uint   `json:"created_by_user_id"`
	Limit           int     `json:"limit"`
	Offset          int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type WorkshopStats struct {
	ParticipantCount int `json:"participant_count"`
	SessionCount     int `json:"session_count"`
	ObservationCount int `json:"observation_count"`
}

// ===== ENTITY REPOSITORIES =====

// All methods take an optional transaction handle; implementations fall back to
// their own connection when tx is nil.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, tx *gorm.DB, identifier string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error)
	GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	AssignRole(ctx context.Context, tx *gorm.DB, user *models.User, role *models.Role) error
}

type RoleRepository interface {
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Role, error)
	EnsureDefaults(ctx context.Context, tx *gorm.DB) error
}

type InvitationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, invitation *models.UserInvitation) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserInvitation, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.UserInvitation, error)
	List(ctx context.Context, tx *gorm.DB, filters InvitationFilters) ([]*models.UserInvitation, int64, error)
	HasPendingForEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	// ConsumeByToken stamps used_at only when the invitation is still unused,
	// returning false when another registration got there first.
	ConsumeByToken(ctx context.Context, tx *gorm.DB, token string, usedAt time.Time) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type WorkshopRepository interface {
	Create(ctx context.Context, tx *gorm.DB, workshop *models.Workshop) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Workshop, error)
	GetByIDWithRelations(ctx context.Context, tx *gorm.DB, id uint) (*models.Workshop, error)
	List(ctx context.Context, tx *gorm.DB, filters WorkshopFilters) ([]*models.Workshop, int64, error)
	Update(ctx context.Context, tx *gorm.DB, workshop *models.Workshop) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*WorkshopStats, error)
}

type ParticipantRepository interface {
	Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error)
	ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.Participant, error)
	Update(ctx context.Context, tx *gorm.DB, participant *models.Participant) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.Session) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error)
	ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.Session, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.Session) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type ObservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *models.ObservationalRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ObservationalRecord, error)
	// GetLatest returns the highest-version record for the pair, or not-found.
	GetLatest(ctx context.Context, tx *gorm.DB, sessionID, participantID uint) (*models.ObservationalRecord, error)
	// ListBySessionParticipant returns every version for the pair, newest first.
	ListBySessionParticipant(ctx context.Context, tx *gorm.DB, sessionID, participantID uint) ([]*models.ObservationalRecord, error)
	ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.ObservationalRecord, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
