package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	outboxapp "github.com/invoiceme/backend/internal/application/outbox"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/interfaces/http/dto"
)

// DeadLetterUseCases is the outbox operator surface
type DeadLetterUseCases interface {
	ListDead(ctx context.Context, page, pageSize int) (*shared.Paginated[outboxapp.EntryView], error)
	Get(ctx context.Context, id uuid.UUID) (*outboxapp.EntryView, error)
	Retry(ctx context.Context, id uuid.UUID) (*outboxapp.EntryView, error)
	RetryAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*outboxapp.Stats, error)
}

// OutboxHandler exposes outbox inspection and dead letter requeueing
type OutboxHandler struct {
	BaseHandler
	svc DeadLetterUseCases
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(svc DeadLetterUseCases) *OutboxHandler {
	return &OutboxHandler{svc: svc}
}

// RegisterRoutes mounts the outbox routes under rg
func (h *OutboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	outbox := rg.Group("/admin/outbox")
	outbox.GET("/stats", h.Stats)
	outbox.GET("/dead-letters", h.ListDead)
	outbox.POST("/dead-letters/retry", h.RetryAll)
	outbox.GET("/entries/:id", h.Get)
	outbox.POST("/entries/:id/retry", h.Retry)
}

// Stats handles GET /admin/outbox/stats
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListDead handles GET /admin/outbox/dead-letters
func (h *OutboxHandler) ListDead(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.svc.ListDead(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /admin/outbox/entries/:id
func (h *OutboxHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "outbox entry")
	if !ok {
		return
	}

	entry, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Retry handles POST /admin/outbox/entries/:id/retry
func (h *OutboxHandler) Retry(c *gin.Context) {
	id, ok := h.parseID(c, "id", "outbox entry")
	if !ok {
		return
	}

	entry, err := h.svc.Retry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAll handles POST /admin/outbox/dead-letters/retry
func (h *OutboxHandler) RetryAll(c *gin.Context) {
	count, err := h.svc.RetryAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"requeued": count})
}
