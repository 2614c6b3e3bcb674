package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/auth"
	"github.com/todovault/todovault/internal/domain/user"
	"github.com/todovault/todovault/internal/http/handlers"
	"github.com/todovault/todovault/internal/security"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserReader struct {
	getByNameFn func(ctx context.Context, name string) (user.User, error)
}

func (f *fakeUserReader) GetByName(ctx context.Context, name string) (user.User, error) {
	if f.getByNameFn != nil {
		return f.getByNameFn(ctx, name)
	}

	return user.User{}, user.ErrNotFound
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := security.HashPassword("correct horse")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	stored := user.User{
		ID:           1,
		PublicID:     "pid-alice",
		Name:         "alice",
		PasswordHash: hash,
	}

	users := &fakeUserReader{
		getByNameFn: func(ctx context.Context, name string) (user.User, error) {
			if name == "alice" {
				return stored, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	tokens := auth.NewManager("test-secret", 30*time.Minute)

	h := handlers.NewAuthHandler(users, tokens)
	r := setupRouter(http.MethodGet, "/login", h.Login)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.SetBasicAuth("alice", "correct horse")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	publicID, err := tokens.Verify(resp.Token)

	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if publicID != "pid-alice" {
		t.Fatalf("token carries public id %q, want pid-alice", publicID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	hash, err := security.HashPassword("correct horse")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	users := &fakeUserReader{
		getByNameFn: func(ctx context.Context, name string) (user.User, error) {
			if name == "alice" {
				return user.User{ID: 1, PublicID: "pid-alice", Name: "alice", PasswordHash: hash}, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	tokens := auth.NewManager("test-secret", 30*time.Minute)
	h := handlers.NewAuthHandler(users, tokens)
	r := setupRouter(http.MethodGet, "/login", h.Login)

	tests := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"no_credentials", func(req *http.Request) {}},
		{"empty_password", func(req *http.Request) { req.SetBasicAuth("alice", "") }},
		{"unknown_user", func(req *http.Request) { req.SetBasicAuth("mallory", "whatever") }},
		{"wrong_password", func(req *http.Request) { req.SetBasicAuth("alice", "wrong horse") }},
	}

	var wantBody string

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			tt.setup(req)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401", w.Code)
			}

			if got := w.Header().Get("WWW-Authenticate"); got != `Basic realm="Login Required!"` {
				t.Fatalf("unexpected challenge header %q", got)
			}

			// every failure mode must produce the same bytes
			if wantBody == "" {
				wantBody = w.Body.String()
			} else if w.Body.String() != wantBody {
				t.Fatalf("body differs between failure modes: %q vs %q", w.Body.String(), wantBody)
			}
		})
	}
}
