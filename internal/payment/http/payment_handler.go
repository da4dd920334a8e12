// Package http provides HTTP handlers for payment attempts.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/rewardsync/internal/httputil"
	"github.com/allisson/rewardsync/internal/payment/http/dto"
	paymentUseCase "github.com/allisson/rewardsync/internal/payment/usecase"
)

// PaymentHandler handles HTTP requests for payment attempts.
type PaymentHandler struct {
	paymentUseCase paymentUseCase.PaymentUseCase
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler with required dependencies.
func NewPaymentHandler(useCase paymentUseCase.PaymentUseCase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: useCase,
		logger:         logger,
	}
}

// InitiateHandler starts a payment.
// POST /v1/payments - Returns 202 Accepted with the PENDING attempt; poll GET /v1/payments/:id.
func (h *PaymentHandler) InitiateHandler(c *gin.Context) {
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	attempt, err := h.paymentUseCase.Initiate(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapAttemptToResponse(attempt))
}

// GetHandler returns the local state of an attempt.
// GET /v1/payments/:id
func (h *PaymentHandler) GetHandler(c *gin.Context) {
	attempt, err := h.paymentUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAttemptToResponse(attempt))
}

// RefreshHandler re-checks an attempt with the backend.
// POST /v1/payments/:id/refresh
func (h *PaymentHandler) RefreshHandler(c *gin.Context) {
	status, err := h.paymentUseCase.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{State: string(status.State)})
}
