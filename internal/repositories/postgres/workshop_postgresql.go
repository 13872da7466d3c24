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

type WorkshopPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewWorkshopPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.WorkshopRepository {
	return &WorkshopPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create inserts a workshop and invalidates owner-scoped caches.
func (w *WorkshopPostgreSQL) Create(ctx context.Context, tx *gorm.DB, workshop *models.Workshop) error {
	if err := w.helpers.getDB(tx).WithContext(ctx).Create(workshop).Error; err != nil {
		return fmt.Errorf("failed to create workshop: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, w.cacheManager.Workshop, fmt.Sprintf("owner:%d:*", workshop.OwnerID))
	cache.SafeInvalidatePattern(ctx, w.cacheManager.Workshop, "list:*")
	return nil
}

// GetByID retrieves a workshop by ID with caching.
func (w *WorkshopPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Workshop, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var workshop models.Workshop

	err := w.cacheManager.Workshop.CacheOrExecute(ctx, cacheKey, &workshop, cache.WorkshopCacheConfig.TTL, func() (interface{}, error) {
		var dbWorkshop models.Workshop
		if err := w.helpers.getDB(tx).WithContext(ctx).First(&dbWorkshop, id).Error; err != nil {
			return nil, err
		}
		return &dbWorkshop, nil
	})
	if err != nil {
		return nil, err
	}

	return &workshop, nil
}

// GetByIDWithRelations loads the workshop together with its participants and sessions.
func (w *WorkshopPostgreSQL) GetByIDWithRelations(ctx context.Context, tx *gorm.DB, id uint) (*models.Workshop, error) {
	var workshop models.Workshop
	err := w.helpers.getDB(tx).WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.created_at ASC")
		}).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sessions.created_at DESC")
		}).
		First(&workshop, id).Error
	if err != nil {
		return nil, err
	}

	workshop.ParticipantCount = len(workshop.Participants)
	workshop.SessionCount = len(workshop.Sessions)
	return &workshop, nil
}

func (w *WorkshopPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.WorkshopFilters) ([]*models.Workshop, int64, error) {
	query := w.helpers.getDB(tx).WithContext(ctx).Model(&models.Workshop{})

	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filters.Name+"%")
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count workshops: %w", err)
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true,
		"name":       true,
	})

	var workshops []*models.Workshop
	if err := applyPagination(query, filters.Limit, filters.Offset).Find(&workshops).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list workshops: %w", err)
	}

	return workshops, total, nil
}

func (w *WorkshopPostgreSQL) Update(ctx context.Context, tx *gorm.DB, workshop *models.Workshop) error {
	// OwnerID is immutable; only name and objective are written.
	err := w.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Workshop{}).
		Where("id = ?", workshop.ID).
		Updates(map[string]interface{}{
			"name":      workshop.Name,
			"objective": workshop.Objective,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update workshop: %w", err)
	}

	cache.InvalidateWorkshopCache(ctx, w.cacheManager, workshop.ID, workshop.OwnerID)
	return nil
}

func (w *WorkshopPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var workshop models.Workshop
	db := w.helpers.getDB(tx).WithContext(ctx)
	if err := db.First(&workshop, id).Error; err != nil {
		return err
	}

	// FK constraints cascade to participants, sessions and their observations.
	if err := db.Delete(&workshop).Error; err != nil {
		return fmt.Errorf("failed to delete workshop: %w", err)
	}

	cache.InvalidateWorkshopCache(ctx, w.cacheManager, id, workshop.OwnerID)
	return nil
}

func (w *WorkshopPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.WorkshopStats, error) {
	cacheKey := fmt.Sprintf("workshop:%d:stats", id)
	var stats repositories.WorkshopStats

	err := w.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := w.helpers.getDB(tx).WithContext(ctx)
		var dbStats repositories.WorkshopStats

		var participantCount, sessionCount, observationCount int64
		if err := db.Model(&models.Participant{}).Where("workshop_id = ?", id).Count(&participantCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count participants: %w", err)
		}
		if err := db.Model(&models.Session{}).Where("workshop_id = ?", id).Count(&sessionCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count sessions: %w", err)
		}
		err := db.Model(&models.ObservationalRecord{}).
			Joins("JOIN sessions ON sessions.id = observational_records.session_id").
			Where("sessions.workshop_id = ?", id).
			Count(&observationCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count observations: %w", err)
		}

		dbStats.ParticipantCount = int(participantCount)
		dbStats.SessionCount = int(sessionCount)
		dbStats.ObservationCount = int(observationCount)
		return &dbStats, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
