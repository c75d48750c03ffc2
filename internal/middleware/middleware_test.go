package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const secret = "middleware-test-secret"

func sign(t *testing.T, claims JWTClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func claimsFor(company string) JWTClaims {
	return JWTClaims{
		UserID:    "u1",
		CompanyID: company,
		Roles:     []string{"estimator"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scoped", JWTAuth(secret), CompanyScope(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextCompanyID))
	})
	r.GET("/admin", JWTAuth(secret), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newRouter()

	w := get(r, "/scoped", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/scoped", sign(t, claimsFor("c1"), "wrong-secret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/scoped", sign(t, claimsFor("c1"), secret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", w.Body.String())

	expired := claimsFor("c1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	w = get(r, "/scoped", sign(t, expired, secret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenFromQuery(t *testing.T) {
	r := newRouter()
	w := get(r, "/scoped?token="+sign(t, claimsFor("c9"), secret), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c9", w.Body.String())
}

func TestCompanyScopeRejectsMissingCompany(t *testing.T) {
	r := newRouter()
	w := get(r, "/scoped", sign(t, claimsFor(""), secret))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "40300")
}

func TestRequireRole(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", sign(t, claimsFor("c1"), secret)).Code)

	admin := claimsFor("c1")
	admin.Roles = []string{"admin"}
	assert.Equal(t, http.StatusOK, get(r, "/admin", sign(t, admin, secret)).Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))

	w = get(r, "/bad", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Request", entries[0].Message)
	assert.Equal(t, "rid-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "Client error", entries[1].Message)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("much larger than eight bytes")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
