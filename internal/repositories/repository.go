package repositories

import "context"

// Repository aggregates all entity repositories behind a single access point.
type Repository interface {
	User() UserRepository
	Role() RoleRepository
	Invitation() InvitationRepository
	Workshop() WorkshopRepository
	Participant() ParticipantRepository
	Session() SessionRepository
	Observation() ObservationRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
