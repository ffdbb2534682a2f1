package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"donezo/internal/handlers"
	"donezo/internal/middleware"
	"donezo/internal/models"
	"donezo/internal/repositories"
	"donezo/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over a fresh in-memory SQLite database with
// the same wiring as main: public auth routes, everything else behind the
// JWT middleware. Task events are disabled (nil publisher).
func setupApp() (*fiber.App, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A unique DSN per call keeps test databases isolated from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	taskRepo := repositories.NewGORMTaskRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	taskService := services.NewTaskService(taskRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	taskHandler.RegisterRoutes(protected)

	return app, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// doJSON fires a JSON request at the app, optionally with a bearer token,
// and returns the response plus its decoded body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()

	var body map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		assert.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body
}

func register(t *testing.T, app *fiber.App, username, email, password string) {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	register(t, app, "alice", "alice@x.com", "pw1pw1")

	// Registering the same username again fails, even with a different email
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "different@x.com",
		"password": "pw1pw1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "username already taken", body["message"])

	// Same email under a new username fails too
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@x.com",
		"password": "pw1pw1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email already registered", body["message"])

	// Login returns a token and the public user projection, never the hash
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "pw1pw1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	user, ok := body["user"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@x.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "Password")

	// Username lookup is case-insensitive
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "Alice",
		"password": "pw1pw1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginDoesNotRevealUsernames(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	register(t, app, "alice", "alice@x.com", "pw1pw1")

	// A wrong password and an unknown username produce identical responses
	respWrongPw, bodyWrongPw := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrongpw",
	})
	respNoUser, bodyNoUser := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nouser",
		"password": "anything",
	})

	assert.Equal(t, http.StatusBadRequest, respWrongPw.StatusCode)
	assert.Equal(t, respWrongPw.StatusCode, respNoUser.StatusCode)
	assert.Equal(t, bodyWrongPw["message"], bodyNoUser["message"])
}

func TestTaskLifecycle(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	register(t, app, "alice", "alice@x.com", "pw1pw1")
	token := login(t, app, "alice", "pw1pw1")

	// Create
	resp, task := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", token, map[string]string{
		"text": "buy milk",
		"tag":  "errand",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "buy milk", task["text"])
	assert.Equal(t, "errand", task["tag"])
	assert.Equal(t, false, task["completed"])
	assert.Equal(t, time.Now().Format(models.DateLayout), task["date"])
	taskID, _ := task["id"].(string)
	assert.NotEmpty(t, taskID)

	// List contains exactly that task
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	var tasks []map[string]interface{}
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	listResp.Body.Close()
	assert.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0]["id"])

	// Partial update: completing the task leaves the other fields alone
	resp, updated := doJSON(t, app, http.MethodPut, "/api/v1/tasks/"+taskID, token, map[string]bool{
		"completed": true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "buy milk", updated["text"])
	assert.Equal(t, "errand", updated["tag"])

	// Delete, then the list is empty
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err = app.Test(req, -1)
	assert.NoError(t, err)
	tasks = nil
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	listResp.Body.Close()
	assert.Empty(t, tasks)

	// Deleting it again is a 404
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTasksAreIsolatedPerOwner(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	register(t, app, "alice", "alice@x.com", "pw1pw1")
	register(t, app, "bob", "bob@x.com", "pw2pw2")
	aliceToken := login(t, app, "alice", "pw1pw1")
	bobToken := login(t, app, "bob", "pw2pw2")

	resp, task := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", aliceToken, map[string]string{
		"text": "alice's secret task",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := task["id"].(string)

	// Bob's list never shows Alice's task
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	var tasks []map[string]interface{}
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	listResp.Body.Close()
	assert.Empty(t, tasks)

	// Bob updating or deleting Alice's task reads as not found, exactly as
	// if the task did not exist
	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/tasks/"+taskID, bobToken, map[string]bool{
		"completed": true,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Task not found", body["message"])

	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/tasks/"+taskID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Task not found", body["message"])

	// Alice still has her task, unmodified
	resp, got := doJSON(t, app, http.MethodPut, "/api/v1/tasks/"+taskID, aliceToken, map[string]string{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice's secret task", got["text"])
	assert.Equal(t, false, got["completed"])
}

func TestUnauthenticatedAccess(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	// No token, a malformed header and a forged token all get the same 401
	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/tasks/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", body["message"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/tasks/", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", body["message"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/tasks/", "", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEmptyTaskTextIsRejected(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	register(t, app, "alice", "alice@x.com", "pw1pw1")
	token := login(t, app, "alice", "pw1pw1")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", token, map[string]string{
		"text": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing was persisted
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	var tasks []map[string]interface{}
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	listResp.Body.Close()
	assert.Empty(t, tasks)
}

func TestProfile(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	register(t, app, "alice", "alice@x.com", "pw1pw1")
	token := login(t, app, "alice", "pw1pw1")

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "alice@x.com", body["email"])
	assert.NotContains(t, body, "password")
}
