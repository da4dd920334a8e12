// Package http provides HTTP handlers for quiz sessions, the wallet and the history ledger.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/httputil"
	"github.com/allisson/rewardsync/internal/identity"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
	"github.com/allisson/rewardsync/internal/rewards/http/dto"
	rewardsUseCase "github.com/allisson/rewardsync/internal/rewards/usecase"
	customValidation "github.com/allisson/rewardsync/internal/validation"
)

// RewardsHandler handles HTTP requests for the locally derived rewards state.
type RewardsHandler struct {
	sessionUseCase rewardsUseCase.SessionUseCase
	walletUseCase  rewardsUseCase.WalletUseCase
	identity       identity.Provider
	logger         *slog.Logger
}

// NewRewardsHandler creates a new rewards handler with required dependencies.
func NewRewardsHandler(
	sessionUseCase rewardsUseCase.SessionUseCase,
	walletUseCase rewardsUseCase.WalletUseCase,
	identityProvider identity.Provider,
	logger *slog.Logger,
) *RewardsHandler {
	return &RewardsHandler{
		sessionUseCase: sessionUseCase,
		walletUseCase:  walletUseCase,
		identity:       identityProvider,
		logger:         logger,
	}
}

// StartSessionHandler opens a quiz session.
// POST /v1/sessions - Returns 201 Created, or 409 Conflict when one is already active.
func (h *RewardsHandler) StartSessionHandler(c *gin.Context) {
	userID, ok := httputil.RequireUserGin(c, h.identity, h.logger)
	if !ok {
		return
	}

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	session, err := h.sessionUseCase.Start(c.Request.Context(), userID, req.QuizID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSessionToResponse(session))
}

// CompleteSessionHandler closes an active session.
// POST /v1/sessions/:id/complete
func (h *RewardsHandler) CompleteSessionHandler(c *gin.Context) {
	userID, ok := httputil.RequireUserGin(c, h.identity, h.logger)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid session id format"), h.logger)
		return
	}

	session, err := h.sessionUseCase.Complete(c.Request.Context(), userID, sessionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// GetSessionHandler returns a session.
// GET /v1/sessions/:id
func (h *RewardsHandler) GetSessionHandler(c *gin.Context) {
	userID, ok := httputil.RequireUserGin(c, h.identity, h.logger)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid session id format"), h.logger)
		return
	}

	session, err := h.sessionUseCase.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// WalletHandler returns the current user's balance.
// GET /v1/wallet
func (h *RewardsHandler) WalletHandler(c *gin.Context) {
	userID, ok := httputil.RequireUserGin(c, h.identity, h.logger)
	if !ok {
		return
	}

	wallet, err := h.walletUseCase.Balance(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWalletToResponse(wallet))
}

// HistoryHandler returns a page of the current user's history ledger.
// GET /v1/history?offset=0&limit=20&order=newest - order is "newest" (default) or "oldest".
func (h *RewardsHandler) HistoryHandler(c *gin.Context) {
	userID, ok := httputil.RequireUserGin(c, h.identity, h.logger)
	if !ok {
		return
	}

	page, err := httputil.ParsePage(c, httputil.HistoryPageLimits)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	entries, err := h.walletUseCase.History(c.Request.Context(), userID, rewardsDomain.HistoryQuery{
		Offset:      page.Offset,
		Limit:       page.Limit,
		OldestFirst: page.OldestFirst,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHistoryToListResponse(entries))
}
