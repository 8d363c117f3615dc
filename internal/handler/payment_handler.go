package handler

import (
	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes payment recording over HTTP.
type PaymentHandler struct {
	service *application.PaymentService
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// RegisterRoutes registers the payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.RecordPayment)
		payments.GET("/booking/:booking_id", h.ListPayments)
	}
}

// RecordPayment handles POST /payments.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req application.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.service.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("failed to record payment", zap.Error(err))
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListPayments handles GET /payments/booking/:booking_id.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "booking_id")
	if !ok {
		return
	}

	dtos, err := h.service.ListPayments(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}
