package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type invitationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	notifier  *NotificationEventService
	// invitationTTL controls how long a token stays redeemable.
	invitationTTL time.Duration
}

func NewInvitationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, notifier *NotificationEventService, invitationTTL time.Duration) InvitationService {
	return &invitationService{
		repo:          repo,
		db:            db,
		logger:        logger,
		validator:     validator,
		notifier:      notifier,
		invitationTTL: invitationTTL,
	}
}

func (s *invitationService) Create(ctx context.Context, req *CreateInvitationRequest, createdBy uint) (*InvitationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, createdBy, 0, "create"); err != nil {
		return nil, err
	}

	registered, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if registered {
		return nil, ErrEmailTaken
	}

	pending, err := s.repo.Invitation().HasPendingForEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending {
		return nil, ErrUserAlreadyInvited
	}

	invitation := models.NewUserInvitation(req.Email, createdBy, s.invitationTTL)
	if err := s.repo.Invitation().Create(ctx, nil, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.logger.Info("Invitation created", "invitation_id", invitation.ID, "email", invitation.Email, "created_by", createdBy)
	s.notifier.NotifyUserInvited(ctx, invitation)

	return toInvitationResponse(invitation), nil
}

func (s *invitationService) List(ctx context.Context, userID uint, filters repositories.InvitationFilters) (*InvitationListResponse, error) {
	if err := s.requireAdmin(ctx, userID, 0, "list"); err != nil {
		return nil, err
	}

	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	invitations, total, err := s.repo.Invitation().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	responses := make([]*InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		responses = append(responses, toInvitationResponse(inv))
	}

	return &InvitationListResponse{
		Invitations: responses,
		Total:       total,
		Page:        filters.Offset/filters.Limit + 1,
		Size:        filters.Limit,
	}, nil
}

// GetByToken backs the registration page: it reveals status and email so the
// form can be pre-filled, but nothing about who sent the invitation.
func (s *invitationService) GetByToken(ctx context.Context, token string) (*InvitationResponse, error) {
	invitation, err := s.repo.Invitation().GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}
	return toInvitationResponse(invitation), nil
}

func (s *invitationService) Delete(ctx context.Context, id uint, userID uint) error {
	if err := s.requireAdmin(ctx, userID, id, "delete"); err != nil {
		return err
	}

	if _, err := s.repo.Invitation().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to look up invitation: %w", err)
	}

	if err := s.repo.Invitation().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	s.logger.Info("Invitation deleted", "invitation_id", id, "deleted_by", userID)
	return nil
}

func (s *invitationService) requireAdmin(ctx context.Context, userID, resourceID uint, action string) error {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsAdmin() {
		return NewPermissionError(userID, resourceID, "invitation", action, "admin role required")
	}
	return nil
}

func toInvitationResponse(inv *models.UserInvitation) *InvitationResponse {
	return &InvitationResponse{
		UserInvitation: inv,
		Status:         inv.Status(),
	}
}
