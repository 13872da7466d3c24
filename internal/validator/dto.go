package validator

// ===== AUTH DTOs =====

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Token           string `json:"token" validate:"required"`
	Username        string `json:"username" validate:"required,min=3,max=80,username_format"`
	Password        string `json:"password" validate:"required,password_strength"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,password_strength"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password_strength"`
}

// ===== INVITATION DTOs =====

type InvitationCreateRequest struct {
	Email string `json:"email" validate:"required,email,max=120"`
}

// ===== WORKSHOP DTOs =====

type WorkshopCreateRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=200"`
	Objective *string `json:"objective" validate:"omitempty,max=2000"`
}

type WorkshopUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Objective *string `json:"objective" validate:"omitempty,max=2000"`
}

// ===== PARTICIPANT DTOs =====

type ParticipantCreateRequest struct {
	Name      string                 `json:"name" validate:"required,min=1,max=200"`
	ExtraData map[string]interface{} `json:"extra_data"`
}

type ParticipantUpdateRequest struct {
	Name      *string                `json:"name" validate:"omitempty,min=1,max=200"`
	ExtraData map[string]interface{} `json:"extra_data"`
}

// ===== SESSION DTOs =====

// Materials accepts either a comma-separated string or an already-split list;
// the service normalizes both through the same parser.
type SessionCreateRequest struct {
	Prompt       string   `json:"prompt" validate:"required,min=1"`
	Motivation   *string  `json:"motivation" validate:"omitempty,max=4000"`
	Materials    *string  `json:"materials"`
	MaterialList []string `json:"material_list" validate:"omitempty,dive,max=200"`
}

type SessionUpdateRequest struct {
	Prompt       *string  `json:"prompt" validate:"omitempty,min=1"`
	Motivation   *string  `json:"motivation" validate:"omitempty,max=4000"`
	Materials    *string  `json:"materials"`
	MaterialList []string `json:"material_list" validate:"omitempty,dive,max=200"`
}

// ===== OBSERVATION DTOs =====

type ObservationStartRequest struct {
	SessionID     uint `json:"session_id" validate:"required"`
	ParticipantID uint `json:"participant_id" validate:"required"`
}

type ObservationAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required,answer_value"`
}

type ObservationCompleteRequest struct {
	FreeformNotes *string `json:"freeform_notes" validate:"omitempty,max=8000"`
}
