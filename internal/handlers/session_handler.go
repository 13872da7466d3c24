package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/services"
	"github.com/arteterapia/workshop-service/internal/utils"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *validator.Validator
}

func NewSessionHandler(sessionService services.SessionService, validator *validator.Validator, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// CreateSession adds a session to a workshop
// @Summary Create session
// @Description Materials accepts a comma-separated string or a list
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Workshop ID"
// @Param session body services.CreateSessionRequest true "Session data"
// @Success 201 {object} models.Session
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	workshopID := h.parseIDParam(c, "id")
	if workshopID == 0 {
		return
	}

	var req services.CreateSessionRequest
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

	session, err := h.sessionService.Create(c.Request.Context(), workshopID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessions lists a workshop's sessions
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {array} models.Session
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	workshopID := h.parseIDParam(c, "id")
	if workshopID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListByWorkshop(c.Request.Context(), workshopID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession retrieves a session
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} models.Session
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// UpdateSession updates prompt, motivation or materials
// @Summary Update session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} models.Session
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [put]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSessionRequest
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

	session, err := h.sessionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session and its observations
// @Summary Delete session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Session deleted successfully"})
}
