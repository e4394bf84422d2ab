package middleware

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})
	return router
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
}

func tokenFor(t *testing.T, role model.UserRole, secret string) string {
	t.Helper()
	user := &model.User{Role: role, Email: "t@aru.ac.uk"}
	user.ID = 1
	token, err := util.GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testConfig()
	router := setupRouter(cfg)
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{"role": claims.Role})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.Student, cfg.JWT.Secret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := setupRouter(testConfig())
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	router := setupRouter(testConfig())
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	cfg := testConfig()
	router := setupRouter(cfg)
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+tokenFor(t, model.Student, cfg.JWT.Secret), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleMiddleware_MatchingRole(t *testing.T) {
	cfg := testConfig()
	router := setupRouter(cfg)
	router.GET("/teach", AuthMiddleware(), RoleMiddleware(model.Instructor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teach", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.Instructor, cfg.JWT.Secret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleMiddleware_WrongRole(t *testing.T) {
	cfg := testConfig()
	router := setupRouter(cfg)
	router.GET("/teach", AuthMiddleware(), RoleMiddleware(model.Instructor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teach", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.Student, cfg.JWT.Secret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoleMiddleware_AdminAlwaysAllowed(t *testing.T) {
	cfg := testConfig()
	router := setupRouter(cfg)
	router.GET("/teach", AuthMiddleware(), RoleMiddleware(model.Instructor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teach", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.Admin, cfg.JWT.Secret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
