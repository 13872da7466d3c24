package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

type InvitationPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewInvitationPostgreSQL(db *gorm.DB) repositories.InvitationRepository {
	return &InvitationPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (i *InvitationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, invitation *models.UserInvitation) error {
	if err := i.helpers.getDB(tx).WithContext(ctx).Create(invitation).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (i *InvitationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserInvitation, error) {
	var invitation models.UserInvitation
	err := i.helpers.getDB(tx).WithContext(ctx).First(&invitation, id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (i *InvitationPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.UserInvitation, error) {
	var invitation models.UserInvitation
	err := i.helpers.getDB(tx).WithContext(ctx).
		Where("token = ?", token).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (i *InvitationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.InvitationFilters) ([]*models.UserInvitation, int64, error) {
	query := i.helpers.getDB(tx).WithContext(ctx).Model(&models.UserInvitation{})

	if filters.Email != nil {
		query = query.Where("email = ?", *filters.Email)
	}
	if filters.CreatedByUserID != nil {
		query = query.Where("created_by_user_id = ?", *filters.CreatedByUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invitations: %w", err)
	}

	var invitations []*models.UserInvitation
	err := applyPagination(query.Order("created_at desc"), filters.Limit, filters.Offset).
		Find(&invitations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, total, nil
}

func (i *InvitationPostgreSQL) HasPendingForEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := i.helpers.getDB(tx).WithContext(ctx).
		Model(&models.UserInvitation{}).
		Where("email = ? AND used_at IS NULL AND expires_at > ?", email, time.Now()).
		Count(&count).Error
	return count > 0, err
}

// ConsumeByToken marks the invitation as used with a conditional update so that
// concurrent registrations against the same token cannot both succeed.
func (i *InvitationPostgreSQL) ConsumeByToken(ctx context.Context, tx *gorm.DB, token string, usedAt time.Time) (bool, error) {
	result := i.helpers.getDB(tx).WithContext(ctx).
		Model(&models.UserInvitation{}).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, usedAt).
		Update("used_at", usedAt)
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume invitation: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (i *InvitationPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := i.helpers.getDB(tx).WithContext(ctx).Delete(&models.UserInvitation{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete invitation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
