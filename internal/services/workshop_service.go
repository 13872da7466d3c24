package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type workshopService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewWorkshopService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) WorkshopService {
	return &workshopService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *workshopService) Create(ctx context.Context, req *CreateWorkshopRequest, ownerID uint) (*WorkshopResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	workshop := &models.Workshop{
		Name:      req.Name,
		Objective: req.Objective,
		OwnerID:   ownerID,
	}

	if err := s.repo.Workshop().Create(ctx, nil, workshop); err != nil {
		return nil, fmt.Errorf("failed to create workshop: %w", err)
	}

	s.logger.Info("Workshop created", "workshop_id", workshop.ID, "owner_id", ownerID)

	return &WorkshopResponse{Workshop: workshop, CanEdit: true, CanDelete: true}, nil
}

// GetByID returns the workshop with participants and sessions loaded. A
// workshop the caller cannot access reads the same as one that does not exist.
func (s *workshopService) GetByID(ctx context.Context, id uint, userID uint) (*WorkshopResponse, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrWorkshopNotFound
	}

	workshop, err := s.repo.Workshop().GetByIDWithRelations(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkshopNotFound
		}
		return nil, fmt.Errorf("failed to load workshop: %w", err)
	}

	workshop.ParticipantCount = len(workshop.Participants)
	workshop.SessionCount = len(workshop.Sessions)

	return &WorkshopResponse{Workshop: workshop, CanEdit: true, CanDelete: true}, nil
}

func (s *workshopService) List(ctx context.Context, userID uint, filters repositories.WorkshopFilters) (*WorkshopListResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Editors only ever see their own workshops, whatever the filter says.
	if !user.IsAdmin() {
		filters.OwnerID = &userID
	}

	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	workshops, total, err := s.repo.Workshop().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list workshops: %w", err)
	}

	responses := make([]*WorkshopResponse, 0, len(workshops))
	for _, w := range workshops {
		responses = append(responses, &WorkshopResponse{Workshop: w, CanEdit: true, CanDelete: true})
	}

	return &WorkshopListResponse{
		Workshops: responses,
		Total:     total,
		Page:      filters.Offset/filters.Limit + 1,
		Size:      filters.Limit,
	}, nil
}

func (s *workshopService) Update(ctx context.Context, id uint, req *UpdateWorkshopRequest, userID uint) (*WorkshopResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrWorkshopNotFound
	}

	workshop, err := s.repo.Workshop().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkshopNotFound
		}
		return nil, fmt.Errorf("failed to load workshop: %w", err)
	}

	if req.Name != nil {
		workshop.Name = *req.Name
	}
	if req.Objective != nil {
		workshop.Objective = req.Objective
	}

	if err := s.repo.Workshop().Update(ctx, nil, workshop); err != nil {
		return nil, fmt.Errorf("failed to update workshop: %w", err)
	}

	s.logger.Info("Workshop updated", "workshop_id", id, "user_id", userID)

	return &WorkshopResponse{Workshop: workshop, CanEdit: true, CanDelete: true}, nil
}

// Delete removes the workshop and, through foreign keys, all its participants,
// sessions and their observations.
func (s *workshopService) Delete(ctx context.Context, id uint, userID uint) error {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canAccess {
		return ErrWorkshopNotFound
	}

	if err := s.repo.Workshop().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrWorkshopNotFound
		}
		return fmt.Errorf("failed to delete workshop: %w", err)
	}

	s.logger.Info("Workshop deleted", "workshop_id", id, "user_id", userID)
	return nil
}

func (s *workshopService) GetStats(ctx context.Context, id uint, userID uint) (*repositories.WorkshopStats, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrWorkshopNotFound
	}

	stats, err := s.repo.Workshop().GetStats(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkshopNotFound
		}
		return nil, fmt.Errorf("failed to load workshop stats: %w", err)
	}
	return stats, nil
}

// CanAccess implements the ownership predicate: admins can reach every
// workshop, editors only the ones they own. A missing workshop is simply not
// accessible.
func (s *workshopService) CanAccess(ctx context.Context, workshopID uint, userID uint) (bool, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}

	workshop, err := s.repo.Workshop().GetByID(ctx, nil, workshopID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	return workshop.OwnerID == userID, nil
}

func (s *workshopService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
