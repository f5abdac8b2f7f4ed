package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func secureHeaders(cfg SecurityConfig) http.Header {
	r := gin.New()
	r.Use(SecureWithConfig(cfg))
	r.GET("/relatorios/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/relatorios/dashboard", nil))
	return w.Header()
}

func TestSecureWithConfig(t *testing.T) {
	h := secureHeaders(DefaultSecurityConfig())
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
	assert.Empty(t, h.Get("Strict-Transport-Security"))

	cfg := DefaultSecurityConfig()
	cfg.HSTSMaxAge = 600
	assert.Equal(t, "max-age=600; includeSubDomains", secureHeaders(cfg).Get("Strict-Transport-Security"))

	h = secureHeaders(SecurityConfig{})
	assert.Empty(t, h.Get("Content-Security-Policy"))
	assert.Empty(t, h.Get("Permissions-Policy"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
}
