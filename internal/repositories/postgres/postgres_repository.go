package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/cache"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user        repositories.UserRepository
	role        repositories.RoleRepository
	invitation  repositories.InvitationRepository
	workshop    repositories.WorkshopRepository
	participant repositories.ParticipantRepository
	session     repositories.SessionRepository
	observation repositories.ObservationRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.role = NewRolePostgreSQL(config.DB)
	repo.invitation = NewInvitationPostgreSQL(config.DB)
	repo.workshop = NewWorkshopPostgreSQL(config.DB, config.RedisClient)
	repo.participant = NewParticipantPostgreSQL(config.DB)
	repo.session = NewSessionPostgreSQL(config.DB, config.RedisClient)
	repo.observation = NewObservationPostgreSQL(config.DB, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) Role() repositories.RoleRepository { return r.role }

func (r *PostgreSQLRepository) Invitation() repositories.InvitationRepository { return r.invitation }

func (r *PostgreSQLRepository) Workshop() repositories.WorkshopRepository { return r.workshop }

func (r *PostgreSQLRepository) Participant() repositories.ParticipantRepository {
	return r.participant
}

func (r *PostgreSQLRepository) Session() repositories.SessionRepository { return r.session }

func (r *PostgreSQLRepository) Observation() repositories.ObservationRepository {
	return r.observation
}

// WithTransaction runs fn against a repository bound to a single transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := NewPostgreSQLRepository(RepositoryConfig{DB: tx, RedisClient: r.redisClient})
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Manager wraps the repository for lifecycle management.
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *Manager {
	return &Manager{config: config}
}

func (m *Manager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.repo.Ping(ctx)
}

func (m *Manager) Shutdown(ctx context.Context) error {
	return m.repo.Close()
}
