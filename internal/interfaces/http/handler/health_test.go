package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(stubPinger{}, "1.2.3")
		c, w := newTestContext()

		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "up", data["database"])
		assert.Equal(t, "1.2.3", data["version"])
		assert.NotEmpty(t, data["go_version"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(stubPinger{err: errors.New("dial tcp: connection refused")}, "1.2.3")
		c, w := newTestContext()

		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "unhealthy", data["status"])
		assert.Equal(t, "down", data["database"])
	})
}
