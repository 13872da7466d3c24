package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/services"
	"github.com/arteterapia/workshop-service/internal/utils"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type ParticipantHandler struct {
	BaseHandler
	participantService services.ParticipantService
	validator          *validator.Validator
}

func NewParticipantHandler(participantService services.ParticipantService, validator *validator.Validator, logger utils.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		BaseHandler:        NewBaseHandler(logger),
		participantService: participantService,
		validator:          validator,
	}
}

// CreateParticipant adds a participant to a workshop
// @Summary Create participant
// @Tags participants
// @Accept json
// @Produce json
// @Param id path uint true "Workshop ID"
// @Param participant body services.CreateParticipantRequest true "Participant data"
// @Success 201 {object} models.Participant
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/participants [post]
func (h *ParticipantHandler) CreateParticipant(c *gin.Context) {
	workshopID := h.parseIDParam(c, "id")
	if workshopID == 0 {
		return
	}

	var req services.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	participant, err := h.participantService.Create(c.Request.Context(), workshopID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participant)
}

// ListParticipants lists a workshop's participants
// @Summary List participants
// @Tags participants
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {array} models.Participant
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/participants [get]
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	workshopID := h.parseIDParam(c, "id")
	if workshopID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	participants, err := h.participantService.ListByWorkshop(c.Request.Context(), workshopID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

// GetParticipant retrieves a participant
// @Summary Get participant
// @Tags participants
// @Produce json
// @Param id path uint true "Participant ID"
// @Success 200 {object} models.Participant
// @Failure 404 {object} ErrorResponse
// @Router /participants/{id} [get]
func (h *ParticipantHandler) GetParticipant(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	participant, err := h.participantService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participant)
}

// UpdateParticipant updates a participant's name or extra data
// @Summary Update participant
// @Tags participants
// @Accept json
// @Produce json
// @Param id path uint true "Participant ID"
// @Success 200 {object} models.Participant
// @Failure 404 {object} ErrorResponse
// @Router /participants/{id} [put]
func (h *ParticipantHandler) UpdateParticipant(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	participant, err := h.participantService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participant)
}

// DeleteParticipant removes a participant and their observations
// @Summary Delete participant
// @Tags participants
// @Produce json
// @Param id path uint true "Participant ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /participants/{id} [delete]
func (h *ParticipantHandler) DeleteParticipant(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.participantService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Participant deleted successfully"})
}
