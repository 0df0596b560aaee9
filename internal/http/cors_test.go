package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware_DisabledReturnsNil(t *testing.T) {
	logger := slog.Default()
	middleware := createCORSMiddleware(false, "http://localhost:3000", logger)
	assert.Nil(t, middleware)
}

func TestCreateCORSMiddleware_EnabledWithoutOriginsReturnsNil(t *testing.T) {
	logger := slog.Default()
	middleware := createCORSMiddleware(true, "", logger)
	assert.Nil(t, middleware)
}

func TestCreateCORSMiddleware_ParsesCommaSeparatedOrigins(t *testing.T) {
	logger := slog.Default()
	middleware := createCORSMiddleware(true, "http://localhost:3000,https://hub.parsivoice.ir", logger)
	assert.NotNil(t, middleware)
}

func TestCreateCORSMiddleware_TrimsWhitespace(t *testing.T) {
	logger := slog.Default()
	middleware := createCORSMiddleware(true, " http://localhost:3000 , https://hub.parsivoice.ir ", logger)
	assert.NotNil(t, middleware)
}

func TestParseOrigins_ParsesCommaSeparated(t *testing.T) {
	origins := parseOrigins("http://localhost:3000,https://hub.parsivoice.ir")
	assert.Equal(t, 2, len(origins))
	assert.Equal(t, "http://localhost:3000", origins[0])
	assert.Equal(t, "https://hub.parsivoice.ir", origins[1])
}

func TestParseOrigins_TrimsWhitespace(t *testing.T) {
	origins := parseOrigins(" http://localhost:3000 , https://hub.parsivoice.ir ")
	assert.Equal(t, 2, len(origins))
	assert.Equal(t, "http://localhost:3000", origins[0])
	assert.Equal(t, "https://hub.parsivoice.ir", origins[1])
}

func TestParseOrigins_HandlesEmptyString(t *testing.T) {
	origins := parseOrigins("")
	assert.Nil(t, origins)
}

func TestCORSIntegration_HeadersAddedWhenEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := slog.Default()
	middleware := createCORSMiddleware(true, "http://localhost:3000", logger)

	router := gin.New()
	if middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/skills", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/skills", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSIntegration_ExposesRateLimitHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := slog.Default()
	middleware := createCORSMiddleware(true, "http://localhost:3000", logger)

	router := gin.New()
	if middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/skills", func(c *gin.Context) {
		c.Header("X-RateLimit-Limit", "100")
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/skills", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	// The UI shell reads its remaining budget from the response headers, so
	// they must be exposed to cross-origin scripts.
	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "X-Request-Id")
	assert.Contains(t, exposed, "X-RateLimit-Limit")
	assert.Contains(t, exposed, "X-RateLimit-Remaining")
	assert.Contains(t, exposed, "Retry-After")
}

func TestCORSIntegration_NoHeadersWhenDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := slog.Default()
	middleware := createCORSMiddleware(false, "http://localhost:3000", logger)

	router := gin.New()
	if middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/skills", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/skills", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSIntegration_PreflightRequestHandled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := slog.Default()
	middleware := createCORSMiddleware(true, "http://localhost:3000", logger)

	router := gin.New()
	if middleware != nil {
		router.Use(middleware)
	}
	router.POST("/v1/session", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"token": "stub"})
	})

	// Send preflight OPTIONS request
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
