package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type sessionService struct {
	repo            repositories.Repository
	workshopService WorkshopService
	db              *gorm.DB
	logger          *slog.Logger
	validator       *validator.Validator
}

func NewSessionService(repo repositories.Repository, workshopService WorkshopService, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) SessionService {
	return &sessionService{
		repo:            repo,
		workshopService: workshopService,
		db:              db,
		logger:          logger,
		validator:       validator,
	}
}

func (s *sessionService) Create(ctx context.Context, workshopID uint, req *CreateSessionRequest, userID uint) (*models.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireWorkshopAccess(ctx, workshopID, userID); err != nil {
		return nil, err
	}

	session := &models.Session{
		WorkshopID: workshopID,
		Prompt:     req.Prompt,
		Motivation: req.Motivation,
		Materials:  materialsFromRequest(req.Materials, req.MaterialList),
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Session created", "session_id", session.ID, "workshop_id", workshopID, "user_id", userID)
	return session, nil
}

func (s *sessionService) GetByID(ctx context.Context, id uint, userID uint) (*models.Session, error) {
	return s.loadAccessible(ctx, id, userID)
}

func (s *sessionService) ListByWorkshop(ctx context.Context, workshopID uint, userID uint) ([]*models.Session, error) {
	if err := s.requireWorkshopAccess(ctx, workshopID, userID); err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session().ListByWorkshop(ctx, nil, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) Update(ctx context.Context, id uint, req *UpdateSessionRequest, userID uint) (*models.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.loadAccessible(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Prompt != nil {
		session.Prompt = *req.Prompt
	}
	if req.Motivation != nil {
		session.Motivation = req.Motivation
	}
	if req.Materials != nil || req.MaterialList != nil {
		session.Materials = materialsFromRequest(req.Materials, req.MaterialList)
	}

	if err := s.repo.Session().Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.logger.Info("Session updated", "session_id", id, "user_id", userID)
	return session, nil
}

// Delete removes the session and cascades to its observational records.
func (s *sessionService) Delete(ctx context.Context, id uint, userID uint) error {
	if _, err := s.loadAccessible(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Session().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("Session deleted", "session_id", id, "user_id", userID)
	return nil
}

func (s *sessionService) loadAccessible(ctx context.Context, id uint, userID uint) (*models.Session, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	canAccess, err := s.workshopService.CanAccess(ctx, session.WorkshopID, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) requireWorkshopAccess(ctx context.Context, workshopID uint, userID uint) error {
	canAccess, err := s.workshopService.CanAccess(ctx, workshopID, userID)
	if err != nil {
		return err
	}
	if !canAccess {
		return ErrWorkshopNotFound
	}
	return nil
}

// materialsFromRequest normalizes the two accepted shapes into one list. A
// request that yields no materials stores nil, not an empty list.
func materialsFromRequest(raw *string, list []string) datatypes.JSONSlice[string] {
	if len(list) > 0 {
		return normalizeMaterials(list)
	}
	if raw != nil {
		return parseMaterials(*raw)
	}
	return nil
}

// parseMaterials splits a comma-separated materials string, trimming whitespace
// and dropping empty entries. Parsing an already-clean list is a no-op, so the
// round trip through storage is stable.
func parseMaterials(raw string) datatypes.JSONSlice[string] {
	return normalizeMaterials(strings.Split(raw, ","))
}

func normalizeMaterials(items []string) datatypes.JSONSlice[string] {
	var out datatypes.JSONSlice[string]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
