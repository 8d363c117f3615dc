package handler

import (
	"time"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FleetHandler exposes availability search and the maintenance workflow.
type FleetHandler struct {
	service *application.FleetService
	logger  *zap.Logger
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(service *application.FleetService, logger *zap.Logger) *FleetHandler {
	return &FleetHandler{service: service, logger: logger}
}

// RegisterRoutes registers the fleet routes on the given router group.
func (h *FleetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cars/search", h.SearchAvailable)

	admin := rg.Group("/admin/maintenance")
	{
		admin.POST("", h.OpenMaintenance)
		admin.PUT("/:id/close", h.CloseMaintenance)
	}
}

// SearchAvailable handles GET /cars/search?branch_id=&start_date=&end_date=.
// Timestamps accept RFC 3339 or a plain date (interpreted as midnight UTC).
func (h *FleetHandler) SearchAvailable(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		response.BadRequest(c, "invalid branch_id: must be a UUID")
		return
	}

	start, err := parseTimestamp(c.Query("start_date"))
	if err != nil {
		response.BadRequest(c, "invalid start_date: use RFC 3339 or YYYY-MM-DD")
		return
	}
	end, err := parseTimestamp(c.Query("end_date"))
	if err != nil {
		response.BadRequest(c, "invalid end_date: use RFC 3339 or YYYY-MM-DD")
		return
	}

	vehicles, err := h.service.SearchAvailable(c.Request.Context(), branchID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, vehicles)
}

// OpenMaintenance handles POST /admin/maintenance.
func (h *FleetHandler) OpenMaintenance(c *gin.Context) {
	var req application.OpenMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.service.OpenMaintenance(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("failed to open maintenance", zap.Error(err))
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

type closeMaintenanceRequest struct {
	DateOut time.Time `json:"date_out"`
}

// CloseMaintenance handles PUT /admin/maintenance/:id/close. The body is
// optional; without one the entry closes as of now.
func (h *FleetHandler) CloseMaintenance(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req closeMaintenanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	if err := h.service.CloseMaintenance(c.Request.Context(), id, req.DateOut); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "closed": true})
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
