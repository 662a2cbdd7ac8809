package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutSubscription(t *testing.T) {
	t.Run("rejects an empty body", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPut, "/api/subscriptions", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upserts on the endpoint", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPut, "/api/subscriptions", gin.H{
			"endpoint": "https://example.com/push",
			"p256dh":   "key",
			"auth":     "secret",
			"area":     "high limit room",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		// Same endpoint, new area: replaced, not duplicated.
		w = env.do(t, http.MethodPut, "/api/subscriptions", gin.H{
			"endpoint": "https://example.com/push",
			"p256dh":   "key",
			"auth":     "secret",
			"area":     "main floor",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint=https://example.com/push", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"area":"main floor"}`, w.Body.String())
	})

	t.Run("delete then lookup is a 404", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPut, "/api/subscriptions", gin.H{
			"endpoint": "https://example.com/gone",
			"p256dh":   "key",
			"auth":     "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.do(t, http.MethodDelete, "/api/subscriptions", gin.H{
			"endpoint": "https://example.com/gone",
		})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint=https://example.com/gone", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
