package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/flow"
	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type observationService struct {
	repo            repositories.Repository
	workshopService WorkshopService
	flowStore       *flow.Store
	db              *gorm.DB
	logger          *slog.Logger
	validator       *validator.Validator
	notifier        *NotificationEventService
}

func NewObservationService(repo repositories.Repository, workshopService WorkshopService, flowStore *flow.Store, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, notifier *NotificationEventService) ObservationService {
	return &observationService{
		repo:            repo,
		workshopService: workshopService,
		flowStore:       flowStore,
		db:              db,
		logger:          logger,
		validator:       validator,
		notifier:        notifier,
	}
}

// ===== FLOW OPERATIONS =====

// StartFlow opens a guided observation for a (session, participant) pair. When
// the pair already has saved versions, the flow starts pre-filled from the
// latest one so the observer only adjusts what changed.
func (s *observationService) StartFlow(ctx context.Context, req *StartObservationRequest, userID uint) (*FlowStepResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.repo.Session().GetByID(ctx, nil, req.SessionID)
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

	participant, err := s.repo.Participant().GetByID(ctx, nil, req.ParticipantID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	if participant.WorkshopID != session.WorkshopID {
		return nil, ErrParticipantNotFound
	}

	state := &flow.State{
		SessionID:     req.SessionID,
		ParticipantID: req.ParticipantID,
		UserID:        userID,
		Answers:       make(map[string]string),
	}

	latest, err := s.repo.Observation().GetLatest(ctx, nil, req.SessionID, req.ParticipantID)
	switch {
	case err == nil:
		state.IsRedo = true
		state.PreviousVersion = latest.Version
		for _, q := range models.AllQuestions() {
			if answer := latest.GetAnswer(q.ID); answer != "" {
				state.Answers[q.ID] = answer
			}
		}
	case repositories.IsNotFoundError(err):
		// first observation for this pair
	default:
		return nil, fmt.Errorf("failed to load latest observation: %w", err)
	}

	state, err = s.flowStore.Start(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to start flow: %w", err)
	}

	s.logger.Info("Observation flow started",
		"flow_id", state.FlowID, "session_id", req.SessionID,
		"participant_id", req.ParticipantID, "redo", state.IsRedo, "user_id", userID)

	return buildFlowStep(state), nil
}

func (s *observationService) GetFlow(ctx context.Context, flowID string, userID uint) (*FlowStepResponse, error) {
	state, err := s.loadFlow(ctx, flowID, userID)
	if err != nil {
		return nil, err
	}
	return buildFlowStep(state), nil
}

// SubmitAnswer records one answer and advances the flow by one. Answers
// accumulate in the flow state; a question may be re-answered and the flow may
// be completed before every question is answered.
func (s *observationService) SubmitAnswer(ctx context.Context, flowID string, req *SubmitAnswerRequest, userID uint) (*FlowStepResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	state, err := s.loadFlow(ctx, flowID, userID)
	if err != nil {
		return nil, err
	}

	if _, ok := models.QuestionByID(req.QuestionID); !ok {
		return nil, ErrUnknownQuestion
	}

	state.Answers[req.QuestionID] = req.Answer
	state.CurrentIndex++

	if err := s.flowStore.Update(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to update flow: %w", err)
	}

	return buildFlowStep(state), nil
}

// Complete persists the flow as the next version for the pair. Partially
// answered flows save as-is. Ownership is re-checked here: access revoked or
// resources deleted mid-flow must not leak into a saved record.
func (s *observationService) Complete(ctx context.Context, flowID string, req *CompleteObservationRequest, userID uint) (*ObservationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	state, err := s.loadFlow(ctx, flowID, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.Session().GetByID(ctx, nil, state.SessionID)
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
	if _, err := s.repo.Participant().GetByID(ctx, nil, state.ParticipantID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	answers := make(datatypes.JSONMap, len(state.Answers))
	for id, value := range state.Answers {
		answers[id] = value
	}

	record := &models.ObservationalRecord{
		SessionID:     state.SessionID,
		ParticipantID: state.ParticipantID,
		Answers:       answers,
		FreeformNotes: req.FreeformNotes,
	}

	if err := s.saveNextVersion(ctx, record); err != nil {
		return nil, err
	}

	if err := s.flowStore.Delete(ctx, flowID); err != nil {
		s.logger.Warn("Failed to delete completed flow", "error", err, "flow_id", flowID)
	}

	s.logger.Info("Observation saved",
		"record_id", record.ID, "session_id", record.SessionID,
		"participant_id", record.ParticipantID, "version", record.Version, "user_id", userID)
	s.notifier.NotifyObservationSaved(ctx, record, userID)

	return &ObservationResponse{ObservationalRecord: record}, nil
}

func (s *observationService) Abandon(ctx context.Context, flowID string, userID uint) error {
	if _, err := s.loadFlow(ctx, flowID, userID); err != nil {
		return err
	}
	return s.flowStore.Delete(ctx, flowID)
}

// saveNextVersion assigns latest+1 and inserts. A concurrent save for the same
// pair trips the composite unique index; one retry picks up the new latest, a
// second collision gives up.
func (s *observationService) saveNextVersion(ctx context.Context, record *models.ObservationalRecord) error {
	for attempt := 0; attempt < 2; attempt++ {
		version := 1
		latest, err := s.repo.Observation().GetLatest(ctx, nil, record.SessionID, record.ParticipantID)
		if err == nil {
			version = latest.Version + 1
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to determine next version: %w", err)
		}

		record.Version = version
		err = s.repo.Observation().Create(ctx, nil, record)
		if err == nil {
			return nil
		}
		if !repositories.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to save observation: %w", err)
		}
	}
	return ErrObservationConflict
}

// ===== RECORD OPERATIONS =====

func (s *observationService) GetByID(ctx context.Context, id uint, userID uint) (*ObservationResponse, error) {
	record, err := s.loadAccessible(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &ObservationResponse{ObservationalRecord: record}, nil
}

// History returns all versions for the pair, newest first.
func (s *observationService) History(ctx context.Context, sessionID, participantID uint, userID uint) (*ObservationListResponse, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
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

	records, err := s.repo.Observation().ListBySessionParticipant(ctx, nil, sessionID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	return toObservationList(records), nil
}

func (s *observationService) ListByWorkshop(ctx context.Context, workshopID uint, userID uint) (*ObservationListResponse, error) {
	canAccess, err := s.workshopService.CanAccess(ctx, workshopID, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrWorkshopNotFound
	}

	records, err := s.repo.Observation().ListByWorkshop(ctx, nil, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	return toObservationList(records), nil
}

func (s *observationService) Delete(ctx context.Context, id uint, userID uint) error {
	if _, err := s.loadAccessible(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Observation().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete observation: %w", err)
	}

	s.logger.Info("Observation deleted", "record_id", id, "user_id", userID)
	return nil
}

// ===== HELPERS =====

func (s *observationService) loadFlow(ctx context.Context, flowID string, userID uint) (*flow.State, error) {
	state, err := s.flowStore.Get(ctx, flowID)
	if err != nil {
		if err == flow.ErrNotFound {
			return nil, ErrFlowExpired
		}
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	// Another user's flow ID reads as expired, not forbidden.
	if state.UserID != userID {
		return nil, ErrFlowExpired
	}
	return state, nil
}

func (s *observationService) loadAccessible(ctx context.Context, id uint, userID uint) (*models.ObservationalRecord, error) {
	record, err := s.repo.Observation().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrObservationNotFound
		}
		return nil, fmt.Errorf("failed to load observation: %w", err)
	}

	session, err := s.repo.Session().GetByID(ctx, nil, record.SessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrObservationNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	canAccess, err := s.workshopService.CanAccess(ctx, session.WorkshopID, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrObservationNotFound
	}
	return record, nil
}

func buildFlowStep(state *flow.State) *FlowStepResponse {
	resp := &FlowStepResponse{
		FlowID:          state.FlowID,
		SessionID:       state.SessionID,
		ParticipantID:   state.ParticipantID,
		QuestionIndex:   state.CurrentIndex,
		TotalQuestions:  models.TotalQuestionCount(),
		IsRedo:          state.IsRedo,
		PreviousVersion: state.PreviousVersion,
	}

	if question, ok := models.QuestionByIndex(state.CurrentIndex); ok {
		resp.Question = &question
		resp.PrefilledAnswer = state.Answers[question.ID]
	} else {
		resp.Completed = true
	}
	return resp
}

func toObservationList(records []*models.ObservationalRecord) *ObservationListResponse {
	responses := make([]*ObservationResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, &ObservationResponse{ObservationalRecord: record})
	}
	return &ObservationListResponse{Observations: responses, Total: len(responses)}
}
