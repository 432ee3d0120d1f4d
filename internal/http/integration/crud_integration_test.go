package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prodsmart/backend/internal/config"
	apphttp "github.com/prodsmart/backend/internal/http"
	"github.com/prodsmart/backend/internal/session"
	"github.com/prodsmart/backend/internal/store/memory"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:5500"},
		SessionTTL:     time.Hour,
		StaticDir:      "testdata",
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return apphttp.NewRouter(logger, testConfig(), apphttp.Deps{
		Docs:     memory.New(),
		Sessions: session.NewMemoryStore(time.Hour),
	})
}

// doRequest runs a request and returns the recorder.

func doRequest(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func signUp(t *testing.T, router http.Handler, email, name string) *http.Cookie {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/auth/signup",
		`{"email":"`+email+`","password":"p","name":"`+name+`"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d, body=%s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" && c.Value != "" {
			return c
		}
	}

	t.Fatalf("signup did not set a session cookie")

	return nil
}

func TestSignupLoginScenario(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/auth/signup",
		`{"email":"a@x.com","password":"p","name":"A"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d, body=%s", w.Code, w.Body.String())
	}

	// duplicate email
	w = doRequest(router, http.MethodPost, "/api/auth/signup",
		`{"email":"a@x.com","password":"q","name":"A2"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d", w.Code)
	}

	// wrong password is distinguished from unknown user
	w = doRequest(router, http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", w.Code)
	}

	var body map[string]any
	mustReadJSON(t, w, &body)

	if body["error"] != "INVALID_PASSWORD" {
		t.Fatalf("wrong password error: %v", body["error"])
	}

	w = doRequest(router, http.MethodPost, "/api/auth/login",
		`{"email":"b@x.com","password":"p"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d", w.Code)
	}

	mustReadJSON(t, w, &body)

	if body["error"] != "USER_NOT_FOUND" {
		t.Fatalf("unknown user error: %v", body["error"])
	}

	// and the right password works
	w = doRequest(router, http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"p"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestTaskLifecycle(t *testing.T) {
	router := setupRouter(t)
	cookie := signUp(t, router, "a@x.com", "A")

	// create with defaults
	w := doRequest(router, http.MethodPost, "/api/tasks", `{"text":"buy milk"}`, cookie)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body=%s", w.Code, w.Body.String())
	}

	var task map[string]any
	mustReadJSON(t, w, &task)

	if task["completed"] != false {
		t.Fatalf("completed default: %v", task["completed"])
	}
	if date, _ := task["date"].(string); date == "" {
		t.Fatalf("server-set date missing: %v", task)
	}

	id := task["id"].(string)

	// partial update touches only the sent field
	w = doRequest(router, http.MethodPut, "/api/tasks/"+id, `{"completed":true}`, cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body=%s", w.Code, w.Body.String())
	}

	mustReadJSON(t, w, &task)

	if task["completed"] != true || task["text"] != "buy milk" {
		t.Fatalf("update result: %v", task)
	}

	// update with only non-whitelisted keys is a 200 no-op
	w = doRequest(router, http.MethodPut, "/api/tasks/"+id, `{"user_id":"x","bogus":1}`, cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("no-op update: status %d", w.Code)
	}

	mustReadJSON(t, w, &task)

	if task["text"] != "buy milk" || task["completed"] != true {
		t.Fatalf("no-op update changed the record: %v", task)
	}

	// delete, then the id is gone
	w = doRequest(router, http.MethodDelete, "/api/tasks/"+id, "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d", w.Code)
	}

	w = doRequest(router, http.MethodDelete, "/api/tasks/"+id, "", cookie)

	if w.Code != http.StatusNotFound {
		t.Fatalf("delete after delete: status %d", w.Code)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	router := setupRouter(t)
	alice := signUp(t, router, "alice@x.com", "Alice")
	bob := signUp(t, router, "bob@x.com", "Bob")

	w := doRequest(router, http.MethodPost, "/api/tasks", `{"text":"alice's task"}`, alice)

	var task map[string]any
	mustReadJSON(t, w, &task)
	id := task["id"].(string)

	// bob's list excludes it
	w = doRequest(router, http.MethodGet, "/api/tasks", "", bob)

	var list []map[string]any
	mustReadJSON(t, w, &list)

	if len(list) != 0 {
		t.Fatalf("bob sees alice's tasks: %v", list)
	}

	// bob's update and delete behave as if the id does not exist
	w = doRequest(router, http.MethodPut, "/api/tasks/"+id, `{"text":"hijacked"}`, bob)

	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-owner update: status %d", w.Code)
	}

	w = doRequest(router, http.MethodDelete, "/api/tasks/"+id, "", bob)

	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete: status %d", w.Code)
	}

	// bob's delete-all leaves alice untouched
	w = doRequest(router, http.MethodDelete, "/api/tasks", "", bob)

	if w.Code != http.StatusOK {
		t.Fatalf("bob delete all: status %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/tasks", "", alice)
	mustReadJSON(t, w, &list)

	if len(list) != 1 || list[0]["text"] != "alice's task" {
		t.Fatalf("alice's task gone: %v", list)
	}
}

func TestNoteCreationRule(t *testing.T) {
	router := setupRouter(t)
	cookie := signUp(t, router, "a@x.com", "A")

	// nothing at all
	w := doRequest(router, http.MethodPost, "/api/notes",
		`{"title":null,"content":null,"attachments":[]}`, cookie)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty note: status %d", w.Code)
	}

	// the editor's empty sentinel is still empty
	w = doRequest(router, http.MethodPost, "/api/notes",
		`{"content":"<p><br></p>"}`, cookie)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("sentinel-only note: status %d", w.Code)
	}

	// an attachment alone is enough
	w = doRequest(router, http.MethodPost, "/api/notes",
		`{"attachments":["x"]}`, cookie)

	if w.Code != http.StatusCreated {
		t.Fatalf("attachment-only note: status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestNotificationsAreDeleteOnly(t *testing.T) {
	router := setupRouter(t)
	cookie := signUp(t, router, "a@x.com", "A")

	w := doRequest(router, http.MethodPost, "/api/notifications",
		`{"title":"reminder due","description":"d","source":"reminders"}`, cookie)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}

	var n map[string]any
	mustReadJSON(t, w, &n)

	if ts, _ := n["timestamp"].(string); ts == "" {
		t.Fatalf("server timestamp missing: %v", n)
	}

	id := n["id"].(string)

	// the PUT route exists but nothing is mutable
	w = doRequest(router, http.MethodPut, "/api/notifications/"+id, `{"title":"changed"}`, cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("notification update: status %d", w.Code)
	}

	mustReadJSON(t, w, &n)

	if n["title"] != "reminder due" {
		t.Fatalf("notification mutated: %v", n)
	}

	w = doRequest(router, http.MethodDelete, "/api/notifications/"+id, "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("notification delete: status %d", w.Code)
	}
}

func TestLogoutEndsTheSession(t *testing.T) {
	router := setupRouter(t)
	cookie := signUp(t, router, "a@x.com", "A")

	w := doRequest(router, http.MethodGet, "/api/auth/session", "", cookie)

	var body map[string]any
	mustReadJSON(t, w, &body)

	if body["authenticated"] != true {
		t.Fatalf("fresh session not authenticated: %v", body)
	}

	w = doRequest(router, http.MethodPost, "/api/auth/logout", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}

	// the old token no longer authenticates
	w = doRequest(router, http.MethodGet, "/api/tasks", "", cookie)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("request after logout: status %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/auth/session", "", cookie)
	mustReadJSON(t, w, &body)

	if body["authenticated"] != false {
		t.Fatalf("session check after logout: %v", body)
	}
}
