package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/services"
	"github.com/arteterapia/workshop-service/internal/utils"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type InvitationHandler struct {
	BaseHandler
	invitationService services.InvitationService
	validator         *validator.Validator
}

func NewInvitationHandler(invitationService services.InvitationService, validator *validator.Validator, logger utils.Logger) *InvitationHandler {
	return &InvitationHandler{
		BaseHandler:       NewBaseHandler(logger),
		invitationService: invitationService,
		validator:         validator,
	}
}

// CreateInvitation invites a new user by email
// @Summary Create invitation
// @Description Issues a registration invitation; admin only
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitation body services.CreateInvitationRequest true "Invitation data"
// @Success 201 {object} services.InvitationResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /invitations [post]
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	var req services.CreateInvitationRequest
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

	invitation, err := h.invitationService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

// ListInvitations lists invitations with their derived status
// @Summary List invitations
// @Tags invitations
// @Produce json
// @Success 200 {object} services.InvitationListResponse
// @Failure 403 {object} ErrorResponse
// @Router /invitations [get]
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.InvitationFilters{}
	if email := c.Query("email"); email != "" {
		filters.Email = &email
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page, _ := strconv.Atoi(c.DefaultQuery("page", "1")); page > 1 {
		filters.Offset = (page - 1) * filters.Limit
	}

	list, err := h.invitationService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetInvitationByToken checks an invitation token before registration
// @Summary Inspect invitation
// @Description Public endpoint used by the registration form
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} services.InvitationResponse
// @Failure 404 {object} ErrorResponse
// @Router /invitations/token/{token} [get]
func (h *InvitationHandler) GetInvitationByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing token"})
		return
	}

	invitation, err := h.invitationService.GetByToken(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitation)
}

// DeleteInvitation revokes an invitation
// @Summary Delete invitation
// @Tags invitations
// @Produce json
// @Param id path uint true "Invitation ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /invitations/{id} [delete]
func (h *InvitationHandler) DeleteInvitation(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.invitationService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Invitation deleted successfully"})
}
