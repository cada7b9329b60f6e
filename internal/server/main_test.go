package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		Env:                   "test",
		DBSchemaMode:          "auto",
		AccessTokenSecret:     "access-secret-for-handler-tests",
		AccessTokenExpiresIn:  time.Hour,
		RefreshTokenSecret:    "refresh-secret-for-handler-tests",
		RefreshTokenExpiresIn: 24 * time.Hour,
		BcryptCost:            config.MinBcryptCost,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(), newTestDB(t), nil)
	require.NoError(t, err)
	return s, s.NewApp()
}

// doJSON sends a request and decodes the JSON response body into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

// signupAndLogin registers an account through the API and returns its token pair.
func signupAndLogin(t *testing.T, app *fiber.App, nickname string) (access, refresh string) {
	t.Helper()
	status, _ := doJSON(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"email":    nickname + "@example.com",
		"password": "password123",
		"name":     "Name " + nickname,
		"nickname": nickname,
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"email":    nickname + "@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, status)
	return body["accessToken"].(string), body["refreshToken"].(string)
}

func createPostViaAPI(t *testing.T, app *fiber.App, token, title string) uint {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/post", map[string]interface{}{
		"title":   title,
		"content": "content of " + title,
	}, token)
	require.Equal(t, http.StatusCreated, status, body)
	return uint(body["id"].(float64))
}
