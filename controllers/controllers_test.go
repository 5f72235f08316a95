package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"mealdesk/database"
	"mealdesk/repositories"
	"mealdesk/services"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestServer wires the full stack (sqlite, repositories, services,
// controllers) into a go-restful container, the way main does.
func setupTestServer(t *testing.T) *restful.Container {
	t.Helper()

	dsn := fmt.Sprintf("file:mealctl%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db)) // also seeds the admin account

	logger := zap.NewNop()
	userService := services.NewUserService(repositories.NewUserRepository(db))
	mealService := services.NewMealService(repositories.NewMealSelectionRepository(db))

	container := restful.NewContainer()

	authWS := new(restful.WebService)
	NewAuthController(userService, logger, false).RegisterRoutes(authWS)
	container.Add(authWS)

	mealWS := new(restful.WebService)
	NewMealController(mealService, logger).RegisterRoutes(mealWS)
	container.Add(mealWS)

	userWS := new(restful.WebService)
	NewUserController(userService, mealService, logger).RegisterRoutes(userWS)
	container.Add(userWS)

	return container
}

// doJSON performs one request against the container.
func doJSON(t *testing.T, container *restful.Container, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	container.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerAndLogin registers a fresh user and returns its session cookies.
func registerAndLogin(t *testing.T, container *restful.Container, username, employeeID string) []*http.Cookie {
	t.Helper()

	w := doJSON(t, container, "POST", "/api/auth/register", map[string]interface{}{
		"name":       "Test User",
		"username":   username,
		"employeeId": employeeID,
		"department": "Engineering",
		"password":   "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "registration must open a session")
	return cookies
}

// loginAs logs in an existing account and returns its session cookies.
func loginAs(t *testing.T, container *restful.Container, username, password string) []*http.Cookie {
	t.Helper()

	w := doJSON(t, container, "POST", "/api/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}
