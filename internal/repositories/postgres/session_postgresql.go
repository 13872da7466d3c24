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

type SessionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSessionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SessionRepository {
	return &SessionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	if err := s.helpers.getDB(tx).WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Session, fmt.Sprintf("workshop:%d:*", session.WorkshopID))
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Stats, fmt.Sprintf("workshop:%d:*", session.WorkshopID))
	return nil
}

// GetByID retrieves a session by ID with caching.
func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var session models.Session

	err := s.cacheManager.Session.CacheOrExecute(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL, func() (interface{}, error) {
		var dbSession models.Session
		if err := s.helpers.getDB(tx).WithContext(ctx).First(&dbSession, id).Error; err != nil {
			return nil, err
		}
		return &dbSession, nil
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *SessionPostgreSQL) ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.Session, error) {
	var sessions []*models.Session
	err := s.helpers.getDB(tx).WithContext(ctx).
		Where("workshop_id = ?", workshopID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	err := s.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"prompt":     session.Prompt,
			"motivation": session.Motivation,
			"materials":  session.Materials,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, session.ID, session.WorkshopID)
	return nil
}

func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var session models.Session
	db := s.helpers.getDB(tx).WithContext(ctx)
	if err := db.First(&session, id).Error; err != nil {
		return err
	}

	// Observations cascade through the FK constraint.
	if err := db.Delete(&session).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, id, session.WorkshopID)
	return nil
}
