package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/events"
	"github.com/arteterapia/workshop-service/internal/flow"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Auth          AuthConfig
	InvitationTTL time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	flowStore *flow.Store
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	authService        AuthService
	invitationService  InvitationService
	workshopService    WorkshopService
	participantService ParticipantService
	sessionService     SessionService
	observationService ObservationService
	exportService      ExportService
	notifier           *NotificationEventService

	// Lifecycle management
	initialized bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(db *gorm.DB, repo repositories.Repository, flowStore *flow.Store, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		flowStore: flowStore,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and seeds the default roles.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.repo.Role().EnsureDefaults(ctx, nil); err != nil {
		return fmt.Errorf("failed to seed default roles: %w", err)
	}

	sm.notifier = NewNotificationEventService(sm.publisher, sm.logger)

	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.notifier, sm.config.Auth)
	sm.invitationService = NewInvitationService(sm.repo, sm.db, sm.logger, sm.validator, sm.notifier, sm.config.InvitationTTL)
	sm.workshopService = NewWorkshopService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.participantService = NewParticipantService(sm.repo, sm.workshopService, sm.db, sm.logger, sm.validator)
	sm.sessionService = NewSessionService(sm.repo, sm.workshopService, sm.db, sm.logger, sm.validator)
	sm.observationService = NewObservationService(sm.repo, sm.workshopService, sm.flowStore, sm.db, sm.logger, sm.validator, sm.notifier)
	sm.exportService = NewExportService(sm.repo, sm.workshopService, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close event publisher: %w", err)
	}

	sm.initialized = false
	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Invitation() InvitationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.invitationService
}

func (sm *serviceManager) Workshop() WorkshopService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.workshopService
}

func (sm *serviceManager) Participant() ParticipantService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.participantService
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.sessionService
}

func (sm *serviceManager) Observation() ObservationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.observationService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}
