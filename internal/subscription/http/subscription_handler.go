// Package http provides the HTTP handler for the unified subscription status.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/rewardsync/internal/httputil"
	"github.com/allisson/rewardsync/internal/identity"
	"github.com/allisson/rewardsync/internal/subscription/http/dto"
	subscriptionUseCase "github.com/allisson/rewardsync/internal/subscription/usecase"
)

// SubscriptionHandler serves the unified subscription status of the current user.
type SubscriptionHandler struct {
	statusUseCase subscriptionUseCase.StatusUseCase
	identity      identity.Provider
	logger        *slog.Logger
}

// NewSubscriptionHandler creates a new subscription handler with required dependencies.
func NewSubscriptionHandler(
	statusUseCase subscriptionUseCase.StatusUseCase,
	identityProvider identity.Provider,
	logger *slog.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		statusUseCase: statusUseCase,
		identity:      identityProvider,
		logger:        logger,
	}
}

// GetHandler returns the unified status. ?refresh=true drops the cached status first.
// GET /v1/subscription
func (h *SubscriptionHandler) GetHandler(c *gin.Context) {
	userID, ok := httputil.RequireUserGin(c, h.identity, h.logger)
	if !ok {
		return
	}

	if c.Query("refresh") == "true" {
		h.statusUseCase.Invalidate(userID)
	}

	status, err := h.statusUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusToResponse(status))
}
