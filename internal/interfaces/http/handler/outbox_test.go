package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	outboxapp "github.com/invoiceme/backend/internal/application/outbox"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/interfaces/http/dto"
)

func newOutboxRouter(svc *MockDeadLetters) *gin.Engine {
	router := gin.New()
	NewOutboxHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestOutboxHandler_Stats(t *testing.T) {
	svc := new(MockDeadLetters)
	svc.On("Stats", mock.Anything).Return(&outboxapp.Stats{Pending: 2, Dead: 1, Total: 3}, nil)

	w := serve(newOutboxRouter(svc), http.MethodGet, "/api/v1/admin/outbox/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(1), data["dead"])
	assert.Equal(t, float64(3), data["total"])
}

func TestOutboxHandler_ListDead(t *testing.T) {
	svc := new(MockDeadLetters)
	page := shared.NewPaginated([]outboxapp.EntryView{{ID: uuid.New(), Status: "DEAD"}}, 1, 2, 10)
	svc.On("ListDead", mock.Anything, 2, 10).Return(&page, nil)

	w := serve(newOutboxRouter(svc), http.MethodGet, "/api/v1/admin/outbox/dead-letters?page=2&page_size=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestOutboxHandler_ListDead_DefaultsPaging(t *testing.T) {
	svc := new(MockDeadLetters)
	page := shared.NewPaginated([]outboxapp.EntryView{}, 0, 1, 20)
	svc.On("ListDead", mock.Anything, 1, 20).Return(&page, nil)

	w := serve(newOutboxRouter(svc), http.MethodGet, "/api/v1/admin/outbox/dead-letters", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestOutboxHandler_ListDead_PageSizeTooLarge(t *testing.T) {
	svc := new(MockDeadLetters)

	w := serve(newOutboxRouter(svc), http.MethodGet, "/api/v1/admin/outbox/dead-letters?page_size=500", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListDead", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboxHandler_Get_NotFound(t *testing.T) {
	svc := new(MockDeadLetters)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, shared.NewNotFoundError("outbox entry", id))

	w := serve(newOutboxRouter(svc), http.MethodGet, "/api/v1/admin/outbox/entries/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
}

func TestOutboxHandler_Retry(t *testing.T) {
	svc := new(MockDeadLetters)
	id := uuid.New()
	svc.On("Retry", mock.Anything, id).Return(&outboxapp.EntryView{ID: id, Status: "PENDING"}, nil)

	w := serve(newOutboxRouter(svc), http.MethodPost, "/api/v1/admin/outbox/entries/"+id.String()+"/retry", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", decodeResponse(t, w).Data.(map[string]any)["status"])
}

func TestOutboxHandler_Retry_NotDead(t *testing.T) {
	svc := new(MockDeadLetters)
	id := uuid.New()
	svc.On("Retry", mock.Anything, id).Return(nil, shared.NewInvalidStateError("outbox entry %s is SENT", id))

	w := serve(newOutboxRouter(svc), http.MethodPost, "/api/v1/admin/outbox/entries/"+id.String()+"/retry", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)
}

func TestOutboxHandler_Retry_BadID(t *testing.T) {
	svc := new(MockDeadLetters)

	w := serve(newOutboxRouter(svc), http.MethodPost, "/api/v1/admin/outbox/entries/nope/retry", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Retry", mock.Anything, mock.Anything)
}

func TestOutboxHandler_RetryAll(t *testing.T) {
	svc := new(MockDeadLetters)
	svc.On("RetryAll", mock.Anything).Return(int64(4), nil)

	w := serve(newOutboxRouter(svc), http.MethodPost, "/api/v1/admin/outbox/dead-letters/retry", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeResponse(t, w).Data.(map[string]any)["requeued"])
}
