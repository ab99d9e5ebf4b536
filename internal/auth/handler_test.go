package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

type stubRepo struct {
	user   *User
	logins int
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, shared.ErrNotFound
	}
	u := *r.user
	return &u, nil
}

func (r *stubRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, shared.ErrNotFound
	}
	u := *r.user
	return &u, nil
}

func (r *stubRepo) RecordLogin(ctx context.Context, userID int64, at time.Time, ip, ua string) error {
	r.logins++
	return nil
}

func newTestHandler(t *testing.T, repo Repository) (*Handler, *shared.SessionManager, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "mailom_session", time.Hour, false)
	csrf := shared.NewCSRFManager("test-secret")
	h := NewHandler(slog.New(slog.NewTextHandler(discardWriter{}, nil)), NewService(repo), sessions, csrf)
	return h, sessions, func() {
		_ = client.Close()
		mr.Close()
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func doLogin(t *testing.T, h *Handler, sessions *shared.SessionManager, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	sess, err := sessions.Load(req.Context(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	h.handleLogin(rr, req)
	return rr
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &User{
		ID:           7,
		Email:        "manager@mailom.test",
		Name:         "Manager",
		PasswordHash: string(hash),
		Role:         rbac.RoleManager,
		IsActive:     true,
	}}
	h, sessions, cleanup := newTestHandler(t, repo)
	defer cleanup()

	rr := doLogin(t, h, sessions, `{"email":"manager@mailom.test","password":"changeme123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		User struct {
			ID          int64    `json:"id"`
			Role        string   `json:"role"`
			Permissions []string `json:"permissions"`
		} `json:"user"`
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID != 7 || resp.User.Role != "MANAGER" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if resp.CSRFToken == "" {
		t.Fatal("expected csrf token in login response")
	}
	if len(resp.User.Permissions) == 0 {
		t.Fatal("expected permissions for manager")
	}
	if repo.logins != 1 {
		t.Fatalf("expected login to be recorded, got %d", repo.logins)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	repo := &stubRepo{user: &User{
		ID:           7,
		Email:        "manager@mailom.test",
		PasswordHash: string(hash),
		Role:         rbac.RoleManager,
		IsActive:     true,
	}}
	h, sessions, cleanup := newTestHandler(t, repo)
	defer cleanup()

	rr := doLogin(t, h, sessions, `{"email":"manager@mailom.test","password":"wrongpassword"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	repo := &stubRepo{user: &User{
		ID:           3,
		Email:        "old@mailom.test",
		PasswordHash: string(hash),
		Role:         rbac.RoleEmployee,
		IsActive:     false,
	}}
	h, sessions, cleanup := newTestHandler(t, repo)
	defer cleanup()

	rr := doLogin(t, h, sessions, `{"email":"old@mailom.test","password":"changeme123"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	h, sessions, cleanup := newTestHandler(t, &stubRepo{})
	defer cleanup()

	rr := doLogin(t, h, sessions, `{"email":"not-an-email","password":"x"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
