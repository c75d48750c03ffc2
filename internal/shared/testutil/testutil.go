package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-build/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_buildpro"
	JWTSecret  = "buildpro-test-jwt-secret"

	DefaultCompanyID = "company-test-001"
	DefaultUserID    = "user-test-001"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func loadEnv() {
	if root := projectRoot(); root != "" {
		_ = godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens Postgres with an isolated schema per test and migrates models.
// The test is skipped when Postgres is unreachable.
func SetupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	loadEnv()

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC connect_timeout=3",
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "buildpro"),
		getEnv("DB_PASSWORD", "buildpro"),
		getEnv("DB_NAME", "buildpro"),
	)
	silent := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	setupDB, err := gorm.Open(postgres.Open(baseDSN), silent)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	sqlSetup, _ := setupDB.DB()
	if err := sqlSetup.Ping(); err != nil {
		sqlSetup.Close()
		t.Skipf("postgres unavailable: %v", err)
	}

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000000)
	if err := setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName)).Error; err != nil {
		sqlSetup.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}
	sqlSetup.Close()

	// search_path in DSN so every pooled connection uses the test schema
	db, err := gorm.Open(postgres.Open(baseDSN+" search_path="+schemaName), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("Failed to migrate test tables: %v", err)
		}
	}

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, err := gorm.Open(postgres.Open(baseDSN), silent)
		if err != nil {
			return
		}
		cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
		if sqlClean, _ := cleanDB.DB(); sqlClean != nil {
			sqlClean.Close()
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth and company scope
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret), middleware.CompanyScope())
}

// GenerateTestToken creates a signed token for the given user and company
func GenerateTestToken(userID, companyID string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:    userID,
		Name:      "Test " + userID,
		Email:     userID + "@test.com",
		CompanyID: companyID,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "buildpro",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			ID:        fmt.Sprintf("test-jti-%d", now.UnixNano()),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	return token
}

// DefaultTestToken returns a token for the default admin in the default company
func DefaultTestToken() string {
	return GenerateTestToken(DefaultUserID, DefaultCompanyID, []string{"admin"})
}

// DoRequest executes a JSON request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoUpload posts a multipart form with a single "file" field
func DoUpload(r *gin.Engine, path, fileName string, content []byte, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", fileName)
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON envelope into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// Data returns the "data" object of the envelope
func Data(w *httptest.ResponseRecorder) map[string]interface{} {
	d, _ := ParseResponse(w)["data"].(map[string]interface{})
	return d
}

// Items returns data.items of a list response
func Items(w *httptest.ResponseRecorder) []interface{} {
	items, _ := Data(w)["items"].([]interface{})
	return items
}

// List returns "data" when it is a plain array
func List(w *httptest.ResponseRecorder) []interface{} {
	items, _ := ParseResponse(w)["data"].([]interface{})
	return items
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
