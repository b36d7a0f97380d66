package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/api/middleware"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

type stubAuthService struct {
	loginFn          func(ctx context.Context, username, password string, prov domain.Provenance) (*ports.LoginResult, error)
	logoutFn         func(ctx context.Context, token string) error
	logoutAllFn      func(ctx context.Context, id *domain.Identity) (int64, error)
	sessionsFn       func(ctx context.Context, id *domain.Identity) ([]*domain.Session, error)
	changePasswordFn func(ctx context.Context, id *domain.Identity, current, next string) error
	createUserFn     func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	deactivateFn     func(ctx context.Context, actor *domain.Identity, userID int64) (int64, error)
	forceSignOutFn   func(ctx context.Context, actor *domain.Identity, userID int64) (int64, error)
	sweepFn          func(ctx context.Context) (int64, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string, prov domain.Provenance) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password, prov)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) LogoutAll(ctx context.Context, id *domain.Identity) (int64, error) {
	return s.logoutAllFn(ctx, id)
}

func (s *stubAuthService) Sessions(ctx context.Context, id *domain.Identity) ([]*domain.Session, error) {
	return s.sessionsFn(ctx, id)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, id *domain.Identity, current, next string) error {
	return s.changePasswordFn(ctx, id, current, next)
}

func (s *stubAuthService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createUserFn(ctx, in)
}

func (s *stubAuthService) DeactivateUser(ctx context.Context, actor *domain.Identity, userID int64) (int64, error) {
	return s.deactivateFn(ctx, actor, userID)
}

func (s *stubAuthService) ForceSignOut(ctx context.Context, actor *domain.Identity, userID int64) (int64, error) {
	return s.forceSignOutFn(ctx, actor, userID)
}

func (s *stubAuthService) SweepExpired(ctx context.Context) (int64, error) {
	return s.sweepFn(ctx)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withIdentity(req *http.Request, id *domain.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	expires := time.Now().Add(time.Hour).UTC()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string, prov domain.Provenance) (*ports.LoginResult, error) {
			if username != "alice" || password != "secret-pass" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			if prov.UserAgent != "go-test" {
				t.Fatalf("provenance not captured: %+v", prov)
			}
			return &ports.LoginResult{
				Token:   "token123",
				User:    &domain.User{ID: 1, Username: "alice", Role: domain.RoleAdmin, Active: true, PasswordHash: "hash"},
				Session: &domain.Session{ID: "s1", ExpiresAt: expires},
			}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret-pass"}`)
	req.Header.Set("User-Agent", "go-test")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderSetCookie), "auth_token=token123") {
		t.Fatalf("expected auth cookie, got %q", rec.Header().Get(echo.HeaderSetCookie))
	}

	body := rec.Body.String()
	if strings.Contains(body, "token123") || strings.Contains(body, "hash") {
		t.Fatalf("token and password hash must not appear in the body: %s", body)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Provenance) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	for _, body := range []string{"not-json", `{"username":"alice"}`} {
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", body), httptest.NewRecorder())
		if code := httpCode(t, h.Login(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, domain.Provenance) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"bad"}`), rec)

	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("no cookie may be set on failure")
	}
}

func TestAuthHandler_Logout_WithoutCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		logoutFn: func(context.Context, string) error {
			t.Fatalf("service must not be called without a token")
			return nil
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0") {
		t.Fatalf("cookie must be cleared")
	}
}

func TestAuthHandler_Logout_DeletesSession(t *testing.T) {
	e := newTestEcho()
	var got string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, token string) error {
			got = token
			return nil
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "tok"})
	rec := httptest.NewRecorder()

	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "tok" {
		t.Fatalf("expected token to be revoked, got %q", got)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0") {
		t.Fatalf("cookie must be cleared once the session is gone")
	}
}

func TestAuthHandler_Logout_StoreFailureKeepsCookie(t *testing.T) {
	e := newTestEcho()
	outage := fmt.Errorf("delete session: %w", domain.ErrStoreUnavailable)
	stub := &stubAuthService{
		logoutFn: func(context.Context, string) error { return outage },
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "tok"})
	rec := httptest.NewRecorder()

	if err := h.Logout(e.NewContext(req, rec)); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store outage, got %v", err)
	}
	if got := rec.Header().Get(echo.HeaderSetCookie); got != "" {
		t.Fatalf("cookie must survive a failed logout, got %q", got)
	}
}

func TestAuthHandler_Sessions_MarksCurrent(t *testing.T) {
	e := newTestEcho()
	id := &domain.Identity{UserID: 1, SessionID: "b"}
	stub := &stubAuthService{
		sessionsFn: func(context.Context, *domain.Identity) ([]*domain.Session, error) {
			return []*domain.Session{{ID: "a"}, {ID: "b", Provenance: domain.Provenance{IPAddress: "10.0.0.9"}}}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	rec := httptest.NewRecorder()
	c := e.NewContext(withIdentity(httptest.NewRequest(http.MethodGet, "/auth/sessions", nil), id), rec)

	if err := h.Sessions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0].Current || !resp[1].Current || resp[1].IPAddress != "10.0.0.9" {
		t.Fatalf("unexpected sessions: %+v", resp)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	e := newTestEcho()
	id := &domain.Identity{UserID: 1}
	stub := &stubAuthService{
		changePasswordFn: func(_ context.Context, got *domain.Identity, current, next string) error {
			if got != id || current != "old-password" || next != "new-password" {
				t.Fatalf("unexpected args")
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, middleware.NewCookieTransport(middleware.CookieConfig{}))

	req := withIdentity(jsonRequest(http.MethodPost, "/auth/password", `{"current_password":"old-password","new_password":"new-password"}`), id)
	rec := httptest.NewRecorder()

	if err := h.ChangePassword(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0") {
		t.Fatalf("cookie must be cleared after a password change")
	}

	short := withIdentity(jsonRequest(http.MethodPost, "/auth/password", `{"current_password":"old-password","new_password":"short"}`), id)
	if code := httpCode(t, h.ChangePassword(e.NewContext(short, httptest.NewRecorder()))); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_RequiresIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, middleware.NewCookieTransport(middleware.CookieConfig{}))

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())
	if err := h.Me(c); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
