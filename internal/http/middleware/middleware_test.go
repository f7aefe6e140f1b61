package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenManager("test-secret", time.Minute)
	admin := authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}
	token, err := tokens.GenerateAccess(admin)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		actor, _ := c.Get(ContextActorKey)
		c.JSON(http.StatusOK, gin.H{"email": actor.(authz.Actor).Email})
	})

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@okalab.io")
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		SetActor(c, authz.Actor{UserID: uuid.New(), Email: "s@okalab.io", Role: authz.RoleStudent})
	}, RequireRole(authz.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/enrollments/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/enrollments/abc", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/enrollments/"+uuid.NewString(), nil).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	store, err := NewLimiterStore(nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/quote", RateLimitMiddleware(store, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/quote", nil).Code)
	w := perform(r, http.MethodGet, "/quote", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/quote", nil).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/health", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/health", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/health", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler_UsesLastError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(http.ErrHandlerTimeout)
	})

	w := perform(r, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "timeout")
}
