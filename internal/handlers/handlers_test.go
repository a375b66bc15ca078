package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// setupMock wires the package state to a sqlmock database with no
// optional collaborators, so side effects like realtime fanout are
// disabled and only SQL expectations matter.
func setupMock(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	Init(mockDB, log, Deps{JWTSecret: []byte("test-secret")})
	return mock
}

// asUser injects an authenticated identity the way the JWT middleware
// would.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d (body: %s)", status, w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	if body["error"] != message {
		t.Fatalf("expected error %q, got %q", message, body["error"])
	}
}

func assertExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHandlers_RequireAuth(t *testing.T) {
	setupMock(t)

	router := gin.New()
	router.POST("/likes", ToggleLike)
	router.POST("/follows", ToggleFollow)
	router.POST("/posts", CreatePost)
	router.GET("/notifications", GetNotifications)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/likes"},
		{http.MethodPost, "/follows"},
		{http.MethodPost, "/posts"},
		{http.MethodGet, "/notifications"},
	} {
		w := doJSON(t, router, tc.method, tc.path, map[string]string{"post_id": "p1"})
		assertError(t, w, http.StatusUnauthorized, "Not authenticated.")
	}
}
