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

type participantService struct {
	repo            repositories.Repository
	workshopService WorkshopService
	db              *gorm.DB
	logger          *slog.Logger
	validator       *validator.Validator
}

func NewParticipantService(repo repositories.Repository, workshopService WorkshopService, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ParticipantService {
	return &participantService{
		repo:            repo,
		workshopService: workshopService,
		db:              db,
		logger:          logger,
		validator:       validator,
	}
}

func (s *participantService) Create(ctx context.Context, workshopID uint, req *CreateParticipantRequest, userID uint) (*models.Participant, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireWorkshopAccess(ctx, workshopID, userID); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		Name:       req.Name,
		WorkshopID: workshopID,
		ExtraData:  req.ExtraData,
	}

	if err := s.repo.Participant().Create(ctx, nil, participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	s.logger.Info("Participant created", "participant_id", participant.ID, "workshop_id", workshopID, "user_id", userID)
	return participant, nil
}

func (s *participantService) GetByID(ctx context.Context, id uint, userID uint) (*models.Participant, error) {
	participant, err := s.loadAccessible(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *participantService) ListByWorkshop(ctx context.Context, workshopID uint, userID uint) ([]*models.Participant, error) {
	if err := s.requireWorkshopAccess(ctx, workshopID, userID); err != nil {
		return nil, err
	}

	participants, err := s.repo.Participant().ListByWorkshop(ctx, nil, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (s *participantService) Update(ctx context.Context, id uint, req *UpdateParticipantRequest, userID uint) (*models.Participant, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	participant, err := s.loadAccessible(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		participant.Name = *req.Name
	}
	if req.ExtraData != nil {
		participant.ExtraData = req.ExtraData
	}

	if err := s.repo.Participant().Update(ctx, nil, participant); err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	s.logger.Info("Participant updated", "participant_id", id, "user_id", userID)
	return participant, nil
}

// Delete removes the participant and cascades to their observational records.
func (s *participantService) Delete(ctx context.Context, id uint, userID uint) error {
	if _, err := s.loadAccessible(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Participant().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	s.logger.Info("Participant deleted", "participant_id", id, "user_id", userID)
	return nil
}

// loadAccessible fetches the participant and checks the caller can reach its
// workshop; inaccessible and missing read the same.
func (s *participantService) loadAccessible(ctx context.Context, id uint, userID uint) (*models.Participant, error) {
	participant, err := s.repo.Participant().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	canAccess, err := s.workshopService.CanAccess(ctx, participant.WorkshopID, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrParticipantNotFound
	}
	return participant, nil
}

func (s *participantService) requireWorkshopAccess(ctx context.Context, workshopID uint, userID uint) error {
	canAccess, err := s.workshopService.CanAccess(ctx, workshopID, userID)
	if err != nil {
		return err
	}
	if !canAccess {
		return ErrWorkshopNotFound
	}
	return nil
}
