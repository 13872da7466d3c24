package services

import (
	"context"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type LoginRequest = validator.LoginRequest
type RegisterRequest = validator.RegisterRequest
type ForgotPasswordRequest = validator.ForgotPasswordRequest
type ResetPasswordRequest = validator.ResetPasswordRequest
type ChangePasswordRequest = validator.ChangePasswordRequest

type CreateInvitationRequest = validator.InvitationCreateRequest

type CreateWorkshopRequest = validator.WorkshopCreateRequest
type UpdateWorkshopRequest = validator.WorkshopUpdateRequest

type CreateParticipantRequest = validator.ParticipantCreateRequest
type UpdateParticipantRequest = validator.ParticipantUpdateRequest

type CreateSessionRequest = validator.SessionCreateRequest
type UpdateSessionRequest = validator.SessionUpdateRequest

type StartObservationRequest = validator.ObservationStartRequest
type SubmitAnswerRequest = validator.ObservationAnswerRequest
type CompleteObservationRequest = validator.ObservationCompleteRequest

// ===== AUTH RELATED DTOs =====

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResponse struct {
	Tokens             AuthTokens   `json:"tokens"`
	User               *models.User `json:"user"`
	MustChangePassword bool         `json:"must_change_password"`
}

// ===== INVITATION RELATED DTOs =====

type InvitationResponse struct {
	*models.UserInvitation
	Status models.InvitationStatus `json:"status"`
}

type InvitationListResponse struct {
	Invitations []*InvitationResponse `json:"invitations"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

// ===== WORKSHOP RELATED DTOs =====

type WorkshopResponse struct {
	*models.Workshop
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type WorkshopListResponse struct {
	Workshops []*WorkshopResponse `json:"workshops"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

// ===== OBSERVATION RELATED DTOs =====

// FlowStepResponse describes where an observation flow currently stands: the
// question to present next, pre-filled answer when redoing, and progress.
type FlowStepResponse struct {
	FlowID          string               `json:"flow_id"`
	SessionID       uint                 `json:"session_id"`
	ParticipantID   uint                 `json:"participant_id"`
	Question        *models.FlatQuestion `json:"question,omitempty"`
	QuestionIndex   int                  `json:"question_index"`
	TotalQuestions  int                  `json:"total_questions"`
	PrefilledAnswer string               `json:"prefilled_answer,omitempty"`
	IsRedo          bool                 `json:"is_redo"`
	PreviousVersion int                  `json:"previous_version,omitempty"`
	Completed       bool                 `json:"completed"`
}

type ObservationResponse struct {
	*models.ObservationalRecord
}

type ObservationListResponse struct {
	Observations []*ObservationResponse `json:"observations"`
	Total        int                    `json:"total"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error
	GetUser(ctx context.Context, userID uint) (*models.User, error)

	// ValidateAccessToken parses and verifies a bearer token; the auth
	// middleware is its only caller.
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
}

type InvitationService interface {
	Create(ctx context.Context, req *CreateInvitationRequest, createdBy uint) (*InvitationResponse, error)
	List(ctx context.Context, userID uint, filters repositories.InvitationFilters) (*InvitationListResponse, error)
	GetByToken(ctx context.Context, token string) (*InvitationResponse, error)
	Delete(ctx context.Context, id uint, userID uint) error
}

type WorkshopService interface {
	Create(ctx context.Context, req *CreateWorkshopRequest, ownerID uint) (*WorkshopResponse, error)
	GetByID(ctx context.Context, id uint, userID uint) (*WorkshopResponse, error)
	List(ctx context.Context, userID uint, filters repositories.WorkshopFilters) (*WorkshopListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateWorkshopRequest, userID uint) (*WorkshopResponse, error)
	Delete(ctx context.Context, id uint, userID uint) error
	GetStats(ctx context.Context, id uint, userID uint) (*repositories.WorkshopStats, error)

	// CanAccess is the ownership predicate shared by the nested-resource
	// services: admins see everything, editors only their own workshops.
	CanAccess(ctx context.Context, workshopID uint, userID uint) (bool, error)
}

type ParticipantService interface {
	Create(ctx context.Context, workshopID uint, req *CreateParticipantRequest, userID uint) (*models.Participant, error)
	GetByID(ctx context.Context, id uint, userID uint) (*models.Participant, error)
	ListByWorkshop(ctx context.Context, workshopID uint, userID uint) ([]*models.Participant, error)
	Update(ctx context.Context, id uint, req *UpdateParticipantRequest, userID uint) (*models.Participant, error)
	Delete(ctx context.Context, id uint, userID uint) error
}

type SessionService interface {
	Create(ctx context.Context, workshopID uint, req *CreateSessionRequest, userID uint) (*models.Session, error)
	GetByID(ctx context.Context, id uint, userID uint) (*models.Session, error)
	ListByWorkshop(ctx context.Context, workshopID uint, userID uint) ([]*models.Session, error)
	Update(ctx context.Context, id uint, req *UpdateSessionRequest, userID uint) (*models.Session, error)
	Delete(ctx context.Context, id uint, userID uint) error
}

type ObservationService interface {
	StartFlow(ctx context.Context, req *StartObservationRequest, userID uint) (*FlowStepResponse, error)
	GetFlow(ctx context.Context, flowID string, userID uint) (*FlowStepResponse, error)
	SubmitAnswer(ctx context.Context, flowID string, req *SubmitAnswerRequest, userID uint) (*FlowStepResponse, error)
	Complete(ctx context.Context, flowID string, req *CompleteObservationRequest, userID uint) (*ObservationResponse, error)
	Abandon(ctx context.Context, flowID string, userID uint) error

	GetByID(ctx context.Context, id uint, userID uint) (*ObservationResponse, error)
	History(ctx context.Context, sessionID, participantID uint, userID uint) (*ObservationListResponse, error)
	ListByWorkshop(ctx context.Context, workshopID uint, userID uint) (*ObservationListResponse, error)
	Delete(ctx context.Context, id uint, userID uint) error
}

type ExportService interface {
	// ExportWorkshopObservations renders every observation of a workshop into
	// an xlsx workbook and returns the file bytes with a suggested filename.
	ExportWorkshopObservations(ctx context.Context, workshopID uint, userID uint) ([]byte, string, error)
}

// ServiceManager provides access to all services.
type ServiceManager interface {
	Auth() AuthService
	Invitation() InvitationService
	Workshop() WorkshopService
	Participant() ParticipantService
	Session() SessionService
	Observation() ObservationService
	Export() ExportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
