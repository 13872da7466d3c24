package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/cache"
	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

type ObservationPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewObservationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ObservationRepository {
	return &ObservationPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create inserts a record. A duplicate (session_id, participant_id, version) hits
// the unique index; callers translate that to a conflict and retry with a
// recomputed version.
func (o *ObservationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, record *models.ObservationalRecord) error {
	if err := o.helpers.getDB(tx).WithContext(ctx).Create(record).Error; err != nil {
		return err
	}
	o.invalidateStats(ctx, tx, record.SessionID)
	return nil
}

func (o *ObservationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ObservationalRecord, error) {
	var record models.ObservationalRecord
	err := o.helpers.getDB(tx).WithContext(ctx).
		Preload("Session").
		Preload("Participant").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (o *ObservationPostgreSQL) GetLatest(ctx context.Context, tx *gorm.DB, sessionID, participantID uint) (*models.ObservationalRecord, error) {
	var record models.ObservationalRecord
	err := o.helpers.getDB(tx).WithContext(ctx).
		Where("session_id = ? AND participant_id = ?", sessionID, participantID).
		Order("version DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBySessionParticipant returns every version for the pair, newest first.
func (o *ObservationPostgreSQL) ListBySessionParticipant(ctx context.Context, tx *gorm.DB, sessionID, participantID uint) ([]*models.ObservationalRecord, error) {
	var records []*models.ObservationalRecord
	err := o.helpers.getDB(tx).WithContext(ctx).
		Where("session_id = ? AND participant_id = ?", sessionID, participantID).
		Order("version DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	return records, nil
}

func (o *ObservationPostgreSQL) ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.ObservationalRecord, error) {
	var records []*models.ObservationalRecord
	err := o.helpers.getDB(tx).WithContext(ctx).
		Joins("JOIN sessions ON sessions.id = observational_records.session_id").
		Where("sessions.workshop_id = ?", workshopID).
		Preload("Session").
		Preload("Participant").
		Order("observational_records.created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workshop observations: %w", err)
	}
	return records, nil
}

func (o *ObservationPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var record models.ObservationalRecord
	db := o.helpers.getDB(tx).WithContext(ctx)
	if err := db.First(&record, id).Error; err != nil {
		return err
	}

	if err := db.Delete(&record).Error; err != nil {
		return fmt.Errorf("failed to delete observation: %w", err)
	}

	o.invalidateStats(ctx, tx, record.SessionID)
	return nil
}

// invalidateStats drops the workshop stats cache after an observation write so
// GetStats does not serve a stale observation count for the stats TTL.
func (o *ObservationPostgreSQL) invalidateStats(ctx context.Context, tx *gorm.DB, sessionID uint) {
	var workshopID uint
	err := o.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Session{}).
		Select("workshop_id").
		Where("id = ?", sessionID).
		Scan(&workshopID).Error
	if err != nil || workshopID == 0 {
		return
	}
	cache.SafeInvalidatePattern(ctx, o.cacheManager.Stats, fmt.Sprintf("workshop:%d:*", workshopID))
}
