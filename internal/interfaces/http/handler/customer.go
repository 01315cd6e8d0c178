package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/invoiceme/backend/internal/application/partner"
	"github.com/invoiceme/backend/internal/domain/shared"
)

// CustomerUseCases is the customer service as seen by the HTTP layer
type CustomerUseCases interface {
	Create(ctx context.Context, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error)
	GetByID(ctx context.Context, customerID uuid.UUID) (*partnerapp.CustomerResponse, error)
	List(ctx context.Context, filter partnerapp.CustomerListFilter) (*shared.Paginated[partnerapp.CustomerResponse], error)
	Update(ctx context.Context, customerID uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.CustomerResponse, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
}

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerUseCases
	conflictRetry   ConflictRetryPolicy
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerUseCases, conflictRetry ConflictRetryPolicy) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		conflictRetry:   conflictRetry,
	}
}

// RegisterRoutes mounts the customer routes under rg
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	customers.POST("", h.Create)
	customers.GET("", h.List)
	customers.GET("/:id", h.GetByID)
	customers.PUT("/:id", h.Update)
	customers.DELETE("/:id", h.Delete)
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	customerID, ok := h.parseID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List handles GET /customers with optional search and paging
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, ok := h.parseID(c, "id", "customer")
	if !ok {
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	var customer *partnerapp.CustomerResponse
	err := retryOnConflict(ctx, h.conflictRetry, func() error {
		var err error
		customer, err = h.customerService.Update(ctx, customerID, req)
		return err
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete handles DELETE /customers/:id; customers with invoices cannot be deleted
func (h *CustomerHandler) Delete(c *gin.Context) {
	customerID, ok := h.parseID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
