package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func newSecretRouter(provider *Provider) *gin.Engine {
	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "keyvault"))
	router.GET("/v1/secrets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})
	router.DELETE("/v1/secrets/:index", func(c *gin.Context) {
		if c.Param("index") == "9" {
			c.JSON(http.StatusNotFound, gin.H{"error": "out_of_range"})
			return
		}
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_RecordsListRequests", func(t *testing.T) {
		provider, err := NewProvider("keyvault")
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Shutdown(context.Background()))
		}()
		router := newSecretRouter(provider)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/secrets", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		body := scrape(t, provider)
		assert.Contains(t, body, "keyvault_http_requests_total")
		assert.Contains(t, body, `path="/v1/secrets"`)
		assert.Contains(t, body, `status_class="2xx"`)
		assert.Contains(t, body, "keyvault_http_request_duration_seconds")
	})

	t.Run("Success_IndexRoutesUseThePattern", func(t *testing.T) {
		provider, err := NewProvider("keyvault")
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Shutdown(context.Background()))
		}()
		router := newSecretRouter(provider)

		for _, path := range []string{"/v1/secrets/1", "/v1/secrets/2", "/v1/secrets/9"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
		}

		body := scrape(t, provider)
		assert.Contains(t, body, `path="/v1/secrets/:index"`)
		assert.NotContains(t, body, `path="/v1/secrets/1"`)
		assert.Contains(t, body, `status_class="4xx"`)
		assert.Contains(t, body, `status_code="404"`)
	})

	t.Run("Success_UnmatchedRoutesShareOneLabel", func(t *testing.T) {
		provider, err := NewProvider("keyvault")
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Shutdown(context.Background()))
		}()
		router := newSecretRouter(provider)

		for _, path := range []string{"/wp-admin", "/.env"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
		}

		body := scrape(t, provider)
		assert.Contains(t, body, `path="unmatched"`)
		assert.NotContains(t, body, "wp-admin")
	})
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "/v1/secrets/:index", sanitizePath("/v1/secrets/:index"))
	assert.Equal(t, "/v1/secrets", sanitizePath("/v1/secrets"))
	assert.Equal(t, "unmatched", sanitizePath(""))
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{http.StatusCreated, "2xx"},
		{http.StatusNoContent, "2xx"},
		{http.StatusPreconditionFailed, "4xx"},
		{http.StatusTooManyRequests, "4xx"},
		{http.StatusServiceUnavailable, "5xx"},
		{0, "unknown"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusClass(tt.status))
		})
	}
}
