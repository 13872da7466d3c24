package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

type ParticipantPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewParticipantPostgreSQL(db *gorm.DB) repositories.ParticipantRepository {
	return &ParticipantPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (p *ParticipantPostgreSQL) Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	if err := p.helpers.getDB(tx).WithContext(ctx).Create(participant).Error; err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (p *ParticipantPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error) {
	var participant models.Participant
	err := p.helpers.getDB(tx).WithContext(ctx).First(&participant, id).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.Participant, error) {
	var participants []*models.Participant
	err := p.helpers.getDB(tx).WithContext(ctx).
		Where("workshop_id = ?", workshopID).
		Order("created_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (p *ParticipantPostgreSQL) Update(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	err := p.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Participant{}).
		Where("id = ?", participant.ID).
		Updates(map[string]interface{}{
			"name":       participant.Name,
			"extra_data": participant.ExtraData,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

func (p *ParticipantPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := p.helpers.getDB(tx).WithContext(ctx).Delete(&models.Participant{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete participant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
