// Package http provides HTTP handlers for the offline mutation queue.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/httputil"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	"github.com/allisson/rewardsync/internal/queue/http/dto"
	queueUseCase "github.com/allisson/rewardsync/internal/queue/usecase"
)

// QueueRunner runs a processor on demand.
type QueueRunner interface {
	Run(ctx context.Context, kind queueDomain.Kind) error
}

// QueueHandler handles HTTP requests for enqueueing and inspecting pending mutations.
type QueueHandler struct {
	enqueueUseCase queueUseCase.EnqueueUseCase
	runner         QueueRunner
	logger         *slog.Logger
}

// NewQueueHandler creates a new queue handler with required dependencies.
func NewQueueHandler(
	enqueueUseCase queueUseCase.EnqueueUseCase,
	runner QueueRunner,
	logger *slog.Logger,
) *QueueHandler {
	return &QueueHandler{
		enqueueUseCase: enqueueUseCase,
		runner:         runner,
		logger:         logger,
	}
}

// EnqueueAnswerHandler queues a quiz answer.
// POST /v1/answers - Returns 202 Accepted; the answer is submitted when the device is online.
func (h *QueueHandler) EnqueueAnswerHandler(c *gin.Context) {
	var req dto.EnqueueAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	m, err := h.enqueueUseCase.EnqueueAnswer(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapPendingMutationToResponse(m))
}

// EnqueueUploadHandler queues a media upload.
// POST /v1/uploads - Returns 202 Accepted.
func (h *QueueHandler) EnqueueUploadHandler(c *gin.Context) {
	var req dto.EnqueueUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	m, err := h.enqueueUseCase.EnqueueUpload(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapPendingMutationToResponse(m))
}

// ListHandler lists the current user's pending mutations.
// GET /v1/queues/:kind - kind is "answer", "upload" or the full kind name.
func (h *QueueHandler) ListHandler(c *gin.Context) {
	kind, err := queueDomain.ParseKind(c.Param("kind"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	mutations, err := h.enqueueUseCase.List(c.Request.Context(), kind)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPendingMutationsToListResponse(mutations))
}

// GetHandler reports whether one mutation is still waiting to be sent.
// GET /v1/queues/:kind/items/:id - Returns 404 once the backend confirmed or the queue discarded it.
func (h *QueueHandler) GetHandler(c *gin.Context) {
	kind, err := queueDomain.ParseKind(c.Param("kind"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	m, err := h.enqueueUseCase.Get(c.Request.Context(), kind, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPendingMutationToResponse(m))
}

// ProcessHandler runs the processor of a kind and reports how many items remain.
// POST /v1/queues/:kind/process
func (h *QueueHandler) ProcessHandler(c *gin.Context) {
	kind, err := queueDomain.ParseKind(c.Param("kind"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.runner.Run(c.Request.Context(), kind); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	remaining, err := h.enqueueUseCase.List(c.Request.Context(), kind)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ProcessQueueResponse{Kind: string(kind), Pending: len(remaining)})
}
