package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/services"
	"github.com/arteterapia/workshop-service/internal/utils"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type ObservationHandler struct {
	BaseHandler
	observationService services.ObservationService
	validator          *validator.Validator
}

func NewObservationHandler(observationService services.ObservationService, validator *validator.Validator, logger utils.Logger) *ObservationHandler {
	return &ObservationHandler{
		BaseHandler:        NewBaseHandler(logger),
		observationService: observationService,
		validator:          validator,
	}
}

// ===== FLOW ENDPOINTS =====

// StartFlow opens a guided observation flow
// @Summary Start observation flow
// @Description Pre-fills answers from the latest saved version when redoing
// @Tags observations
// @Accept json
// @Produce json
// @Param flow body services.StartObservationRequest true "Session and participant"
// @Success 201 {object} services.FlowStepResponse
// @Failure 404 {object} ErrorResponse
// @Router /observations/flows [post]
func (h *ObservationHandler) StartFlow(c *gin.Context) {
	var req services.StartObservationRequest
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

	step, err := h.observationService.StartFlow(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, step)
}

// GetFlow returns the current step of an open flow
// @Summary Get flow step
// @Tags observations
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Success 200 {object} services.FlowStepResponse
// @Failure 410 {object} ErrorResponse
// @Router /observations/flows/{flow_id} [get]
func (h *ObservationHandler) GetFlow(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	step, err := h.observationService.GetFlow(c.Request.Context(), c.Param("flow_id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, step)
}

// SubmitAnswer answers the current question and advances the flow
// @Summary Submit answer
// @Tags observations
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Param answer body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.FlowStepResponse
// @Failure 400 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /observations/flows/{flow_id}/answers [post]
func (h *ObservationHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
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

	step, err := h.observationService.SubmitAnswer(c.Request.Context(), c.Param("flow_id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, step)
}

// CompleteFlow saves the flow as the next observation version
// @Summary Complete observation flow
// @Tags observations
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Success 201 {object} services.ObservationResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /observations/flows/{flow_id}/complete [post]
func (h *ObservationHandler) CompleteFlow(c *gin.Context) {
	var req services.CompleteObservationRequest
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

	record, err := h.observationService.Complete(c.Request.Context(), c.Param("flow_id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// AbandonFlow discards an open flow without saving
// @Summary Abandon observation flow
// @Tags observations
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Success 200 {object} SuccessResponse
// @Failure 410 {object} ErrorResponse
// @Router /observations/flows/{flow_id} [delete]
func (h *ObservationHandler) AbandonFlow(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.observationService.Abandon(c.Request.Context(), c.Param("flow_id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Flow abandoned"})
}

// ===== RECORD ENDPOINTS =====

// GetObservation retrieves a saved observation
// @Summary Get observation
// @Tags observations
// @Produce json
// @Param id path uint true "Observation ID"
// @Success 200 {object} services.ObservationResponse
// @Failure 404 {object} ErrorResponse
// @Router /observations/{id} [get]
func (h *ObservationHandler) GetObservation(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	record, err := h.observationService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetHistory lists all versions for a (session, participant) pair, newest first
// @Summary Observation history
// @Tags observations
// @Produce json
// @Param id path uint true "Session ID"
// @Param participant_id path uint true "Participant ID"
// @Success 200 {object} services.ObservationListResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/participants/{participant_id}/observations [get]
func (h *ObservationHandler) GetHistory(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	participantID := h.parseIDParam(c, "participant_id")
	if participantID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	list, err := h.observationService.History(c.Request.Context(), sessionID, participantID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListWorkshopObservations lists every observation across a workshop
// @Summary List workshop observations
// @Tags observations
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {object} services.ObservationListResponse
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/observations [get]
func (h *ObservationHandler) ListWorkshopObservations(c *gin.Context) {
	workshopID := h.parseIDParam(c, "id")
	if workshopID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	list, err := h.observationService.ListByWorkshop(c.Request.Context(), workshopID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// DeleteObservation removes a single observation version
// @Summary Delete observation
// @Tags observations
// @Produce json
// @Param id path uint true "Observation ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /observations/{id} [delete]
func (h *ObservationHandler) DeleteObservation(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.observationService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Observation deleted successfully"})
}

// ===== CATALOG ENDPOINT =====

// GetQuestionCatalog returns the static observational question catalog
// @Summary Question catalog
// @Description Categories, subcategories and questions in presentation order
// @Tags observations
// @Produce json
// @Success 200 {object} gin.H
// @Router /observations/questions [get]
func (h *ObservationHandler) GetQuestionCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":     models.ObservationCategories,
		"answer_options": models.AnswerOptions,
		"total":          models.TotalQuestionCount(),
	})
}
