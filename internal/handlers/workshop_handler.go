package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/repositories"
	"github.com/arteterapia/workshop-service/internal/services"
	"github.com/arteterapia/workshop-service/internal/utils"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type WorkshopHandler struct {
	BaseHandler
	workshopService services.WorkshopService
	exportService   services.ExportService
	validator       *validator.Validator
}

func NewWorkshopHandler(workshopService services.WorkshopService, exportService services.ExportService, validator *validator.Validator, logger utils.Logger) *WorkshopHandler {
	return &WorkshopHandler{
		BaseHandler:     NewBaseHandler(logger),
		workshopService: workshopService,
		exportService:   exportService,
		validator:       validator,
	}
}

// CreateWorkshop creates a new workshop owned by the caller
// @Summary Create workshop
// @Tags workshops
// @Accept json
// @Produce json
// @Param workshop body services.CreateWorkshopRequest true "Workshop data"
// @Success 201 {object} services.WorkshopResponse
// @Failure 400 {object} ErrorResponse
// @Router /workshops [post]
func (h *WorkshopHandler) CreateWorkshop(c *gin.Context) {
	var req services.CreateWorkshopRequest
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

	workshop, err := h.workshopService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workshop)
}

// GetWorkshop retrieves a workshop with its participants and sessions
// @Summary Get workshop
// @Tags workshops
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {object} services.WorkshopResponse
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id} [get]
func (h *WorkshopHandler) GetWorkshop(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	workshop, err := h.workshopService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, workshop)
}

// ListWorkshops lists the workshops visible to the caller
// @Summary List workshops
// @Tags workshops
// @Produce json
// @Success 200 {object} services.WorkshopListResponse
// @Router /workshops [get]
func (h *WorkshopHandler) ListWorkshops(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.WorkshopFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if name := c.Query("name"); name != "" {
		filters.Name = &name
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page, _ := strconv.Atoi(c.DefaultQuery("page", "1")); page > 1 {
		filters.Offset = (page - 1) * filters.Limit
	}

	list, err := h.workshopService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateWorkshop updates name and objective
// @Summary Update workshop
// @Tags workshops
// @Accept json
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {object} services.WorkshopResponse
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id} [put]
func (h *WorkshopHandler) UpdateWorkshop(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateWorkshopRequest
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

	workshop, err := h.workshopService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, workshop)
}

// DeleteWorkshop deletes a workshop and everything in it
// @Summary Delete workshop
// @Description Participants, sessions and observations are removed with it
// @Tags workshops
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id} [delete]
func (h *WorkshopHandler) DeleteWorkshop(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting workshop", "workshop_id", id)

	if err := h.workshopService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Workshop deleted successfully"})
}

// GetWorkshopStats returns participant, session and observation counts
// @Summary Workshop statistics
// @Tags workshops
// @Produce json
// @Param id path uint true "Workshop ID"
// @Success 200 {object} repositories.WorkshopStats
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/stats [get]
func (h *WorkshopHandler) GetWorkshopStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.workshopService.GetStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportWorkshop downloads the workshop's observations as an xlsx workbook
// @Summary Export workshop observations
// @Tags workshops
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Workshop ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /workshops/{id}/export [get]
func (h *WorkshopHandler) ExportWorkshop(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportService.ExportWorkshopObservations(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
