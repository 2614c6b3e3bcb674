package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/auth"
	"github.com/todovault/todovault/internal/config"
	apihttp "github.com/todovault/todovault/internal/http"
	"github.com/todovault/todovault/internal/http/middlewares"
	"github.com/todovault/todovault/internal/repo/memory"
	"github.com/todovault/todovault/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Spins up the full router against in-memory stores, with a pre-seeded admin
// account. Exercises the same wiring as cmd/api minus postgres and the OTLP
// exporter.
func setupAPI(t *testing.T) (*gin.Engine, *memory.UsersRepo, *memory.TodosRepo) {
	t.Helper()

	users := memory.NewUsersRepo()
	todos := memory.NewTodosRepo()

	hash, err := security.HashPassword("root-password")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	admin, err := users.Create(context.Background(), "root", hash)

	if err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}

	if err := users.Promote(context.Background(), admin.PublicID); err != nil {
		t.Fatalf("promote admin failed: %v", err)
	}

	cfg := config.Config{
		Env:          "test",
		MaxBodyBytes: 1 << 20,
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := apihttp.NewRouter(log, cfg, apihttp.Deps{
		Users:  users,
		Todos:  todos,
		Tokens: auth.NewManager("integration-secret", 30*time.Minute),
		PingDB: func(context.Context) error { return nil },
	})

	return r, users, todos
}

func do(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader

	if body != "" {
		rd = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, rd)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set(middlewares.TokenHeader, token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func login(t *testing.T, r *gin.Engine, name, password string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.SetBasicAuth(name, password)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login as %s failed: status %d, body=%s", name, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal login response: %v", err)
	}

	if resp.Token == "" {
		t.Fatal("login returned an empty token")
	}

	return resp.Token
}

func createUser(t *testing.T, r *gin.Engine, adminToken, name, password string) {
	t.Helper()

	w := do(t, r, http.MethodPost, "/user", adminToken,
		`{"name": "`+name+`", "password": "`+password+`"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create user %s failed: status %d, body=%s", name, w.Code, w.Body.String())
	}
}

func TestFullUserAndTodoLifecycle(t *testing.T) {
	r, _, _ := setupAPI(t)

	adminToken := login(t, r, "root", "root-password")

	createUser(t, r, adminToken, "alice", "alice-pw")

	aliceToken := login(t, r, "alice", "alice-pw")

	// empty list to start with

	w := do(t, r, http.MethodGet, "/todo", aliceToken, "")

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Todos":[]`) {
		t.Fatalf("expected empty todo list, got status %d, body=%s", w.Code, w.Body.String())
	}

	// create, fetch, complete, delete

	w = do(t, r, http.MethodPost, "/todo", aliceToken, `{"text": "buy milk"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create todo failed: status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/todo", aliceToken, "")

	var listed struct {
		Todos []struct {
			ID       int64  `json:"id"`
			Text     string `json:"text"`
			Complete bool   `json:"complete"`
		} `json:"Todos"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to unmarshal list response: %v", err)
	}

	if len(listed.Todos) != 1 || listed.Todos[0].Text != "buy milk" || listed.Todos[0].Complete {
		t.Fatalf("unexpected todo list after create: %s", w.Body.String())
	}

	id := strconv.FormatInt(listed.Todos[0].ID, 10)

	w = do(t, r, http.MethodGet, "/todo/"+id, aliceToken, "")

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Todo"`) {
		t.Fatalf("get todo failed: status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/todo/"+id, aliceToken, "")

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "completed successfully") {
		t.Fatalf("complete todo failed: status %d, body=%s", w.Code, w.Body.String())
	}

	// completing again reports it was already done, still a 200

	w = do(t, r, http.MethodPut, "/todo/"+id, aliceToken, "")

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "already completed") {
		t.Fatalf("second complete: status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodDelete, "/todo/"+id, aliceToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("delete todo failed: status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/todo/"+id, aliceToken, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted todo still visible: status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestTodosAreInvisibleAcrossUsers(t *testing.T) {
	r, _, _ := setupAPI(t)

	adminToken := login(t, r, "root", "root-password")
	createUser(t, r, adminToken, "alice", "alice-pw")
	createUser(t, r, adminToken, "bob", "bob-pw")

	aliceToken := login(t, r, "alice", "alice-pw")
	bobToken := login(t, r, "bob", "bob-pw")

	w := do(t, r, http.MethodPost, "/todo", aliceToken, `{"text": "alice's secret"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create todo failed: status %d, body=%s", w.Code, w.Body.String())
	}

	// bob cannot see, complete or delete alice's todo

	w = do(t, r, http.MethodGet, "/todo", bobToken, "")

	if strings.Contains(w.Body.String(), "secret") {
		t.Fatalf("foreign todo leaked into list: %s", w.Body.String())
	}

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w = do(t, r, method, "/todo/1", bobToken, "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("%s /todo/1 as bob: got status %d, want 404", method, w.Code)
		}
	}

	// still there for alice

	w = do(t, r, http.MethodGet, "/todo/1", aliceToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("owner lost access to own todo: status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestAdminGateOnUserRoutes(t *testing.T) {
	r, _, _ := setupAPI(t)

	adminToken := login(t, r, "root", "root-password")
	createUser(t, r, adminToken, "alice", "alice-pw")

	aliceToken := login(t, r, "alice", "alice-pw")

	// non-admin hits the gate

	w := do(t, r, http.MethodGet, "/user", aliceToken, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin list users: got status %d, want 403", w.Code)
	}

	// no token at all

	w = do(t, r, http.MethodGet, "/user", "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list users: got status %d, want 401", w.Code)
	}

	// admin sees the listing, without any password material in it

	w = do(t, r, http.MethodGet, "/user", adminToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("admin list users: status %d, body=%s", w.Code, w.Body.String())
	}

	if strings.Contains(w.Body.String(), "$2a$") || strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password material leaked: %s", w.Body.String())
	}
}

func TestDeletedUserKeepsTodosButLosesAccess(t *testing.T) {
	r, users, todos := setupAPI(t)

	adminToken := login(t, r, "root", "root-password")
	createUser(t, r, adminToken, "alice", "alice-pw")

	aliceToken := login(t, r, "alice", "alice-pw")

	w := do(t, r, http.MethodPost, "/todo", aliceToken, `{"text": "orphan me"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create todo failed: status %d, body=%s", w.Code, w.Body.String())
	}

	alice, err := users.GetByName(context.Background(), "alice")

	if err != nil {
		t.Fatalf("lookup alice: %v", err)
	}

	w = do(t, r, http.MethodDelete, "/user/"+alice.PublicID, adminToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("delete user failed: status %d, body=%s", w.Code, w.Body.String())
	}

	// the todo rows survive the account

	rows, err := todos.ListByOwner(context.Background(), alice.ID)

	if err != nil {
		t.Fatalf("list orphaned todos: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected the todo to survive user deletion, got %d rows", len(rows))
	}

	// but alice's still-valid token no longer resolves to an account

	w = do(t, r, http.MethodGet, "/todo", aliceToken, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user's token still accepted: status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestDuplicateUserNameConflicts(t *testing.T) {
	r, _, _ := setupAPI(t)

	adminToken := login(t, r, "root", "root-password")
	createUser(t, r, adminToken, "alice", "alice-pw")

	w := do(t, r, http.MethodPost, "/user", adminToken, `{"name": "alice", "password": "other"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate name: got status %d, want 409, body=%s", w.Code, w.Body.String())
	}
}

func TestPromoteGrantsAdminAccess(t *testing.T) {
	r, users, _ := setupAPI(t)

	adminToken := login(t, r, "root", "root-password")
	createUser(t, r, adminToken, "alice", "alice-pw")

	alice, err := users.GetByName(context.Background(), "alice")

	if err != nil {
		t.Fatalf("lookup alice: %v", err)
	}

	w := do(t, r, http.MethodPut, "/user/"+alice.PublicID, adminToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("promote failed: status %d, body=%s", w.Code, w.Body.String())
	}

	aliceToken := login(t, r, "alice", "alice-pw")

	w = do(t, r, http.MethodGet, "/user", aliceToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("promoted user denied admin route: status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	r, _, _ := setupAPI(t)

	w := do(t, r, http.MethodGet, "/healthz", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/readyz", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("readyz: status %d", w.Code)
	}
}
