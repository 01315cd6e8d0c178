package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invoicingapp "github.com/invoiceme/backend/internal/application/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
)

// The use cases behind the invoice routes. The application handlers satisfy them.
type (
	CreateInvoiceUseCase interface {
		Handle(ctx context.Context, cmd invoicingapp.CreateInvoiceCommand) (*invoicingapp.CreateInvoiceResult, error)
	}
	UpdateInvoiceUseCase interface {
		Handle(ctx context.Context, cmd invoicingapp.UpdateInvoiceCommand) error
	}
	SendInvoiceUseCase interface {
		Handle(ctx context.Context, cmd invoicingapp.SendInvoiceCommand) error
	}
	RecordPaymentUseCase interface {
		Handle(ctx context.Context, cmd invoicingapp.RecordPaymentCommand) (*invoicingapp.RecordPaymentResult, error)
	}
	DeleteInvoiceUseCase interface {
		Handle(ctx context.Context, cmd invoicingapp.DeleteInvoiceCommand) error
	}
	InvoiceQueries interface {
		GetInvoice(ctx context.Context, id uuid.UUID) (*invoicingapp.InvoiceView, error)
		ListInvoices(ctx context.Context, q invoicingapp.ListInvoicesQuery) (*shared.Paginated[invoicingapp.InvoiceSummary], error)
	}
)

// InvoiceHandlerDeps wires the invoice use cases into InvoiceHandler
type InvoiceHandlerDeps struct {
	Create          CreateInvoiceUseCase
	Update          UpdateInvoiceUseCase
	Send            SendInvoiceUseCase
	RecordPayment   RecordPaymentUseCase
	Delete          DeleteInvoiceUseCase
	Queries         InvoiceQueries
	DefaultCurrency string
	ConflictRetry   ConflictRetryPolicy
}

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	deps InvoiceHandlerDeps
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(deps InvoiceHandlerDeps) *InvoiceHandler {
	if deps.DefaultCurrency == "" {
		deps.DefaultCurrency = "USD"
	}
	return &InvoiceHandler{deps: deps}
}

// RegisterRoutes mounts the invoice routes under rg
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Create)
	invoices.GET("", h.List)
	invoices.GET("/:id", h.GetByID)
	invoices.PUT("/:id", h.Update)
	invoices.DELETE("/:id", h.Delete)
	invoices.POST("/:id/send", h.Send)
	invoices.POST("/:id/payments", h.RecordPayment)
}

// Create handles POST /invoices and answers 201 with {id, invoice_number}
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cmd, err := req.toCommand(h.deps.DefaultCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.deps.Create.Handle(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "invoice")
	if !ok {
		return
	}

	view, err := h.deps.Queries.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	query := invoicingapp.ListInvoicesQuery{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		query.CustomerID = &customerID
	}

	page, err := h.deps.Queries.ListInvoices(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /invoices/:id. Lost optimistic-lock races are retried.
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "invoice")
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cmd, err := req.toCommand(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	err = retryOnConflict(ctx, h.deps.ConflictRetry, func() error {
		return h.deps.Update.Handle(ctx, cmd)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respondWithInvoice(c, id)
}

// Send handles POST /invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := h.parseID(c, "id", "invoice")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := retryOnConflict(ctx, h.deps.ConflictRetry, func() error {
		return h.deps.Send.Handle(ctx, invoicingapp.SendInvoiceCommand{InvoiceID: id})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respondWithInvoice(c, id)
}

// RecordPayment handles POST /invoices/:id/payments and answers 201 with {payment_id}
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := h.parseID(c, "id", "invoice")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cmd, err := req.toCommand(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// Pin the payment ID so a retried attempt cannot record the payment twice
	if cmd.PaymentID == nil {
		paymentID := uuid.New()
		cmd.PaymentID = &paymentID
	}

	ctx := c.Request.Context()
	var result *invoicingapp.RecordPaymentResult
	err = retryOnConflict(ctx, h.deps.ConflictRetry, func() error {
		var err error
		result, err = h.deps.RecordPayment.Handle(ctx, cmd)
		return err
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.deps.Delete.Handle(c.Request.Context(), invoicingapp.DeleteInvoiceCommand{InvoiceID: id}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *InvoiceHandler) respondWithInvoice(c *gin.Context, id uuid.UUID) {
	view, err := h.deps.Queries.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
