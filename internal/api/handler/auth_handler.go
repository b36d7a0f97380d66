package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/api/metrics"
	"github.com/99minutos/reporting-system/internal/api/middleware"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// AuthHandler serves the login, logout and self-service session routes.
type AuthHandler struct {
	authService ports.AuthService
	cookies     *middleware.CookieTransport
}

func NewAuthHandler(authService ports.AuthService, cookies *middleware.CookieTransport) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type userResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

type revokedResponse struct {
	Revoked int64 `json:"revoked"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        string(u.Role),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Login verifies credentials and sets the auth cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Header       200   {string}  Set-Cookie  "auth_token=<token>; HttpOnly; SameSite=Strict"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, provenance(c))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	h.cookies.Write(c, res.Token)
	return c.JSON(http.StatusOK, loginResponse{
		User:      toUserResponse(res.User),
		ExpiresAt: res.Session.ExpiresAt,
	})
}

// Logout ends the current session and clears the cookie. It succeeds with or
// without a cookie; when the store cannot delete the session the cookie is kept.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Failure      503  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := h.cookies.Read(c)
	if !ok {
		h.cookies.Clear(c)
		return c.NoContent(http.StatusNoContent)
	}

	// The cookie stays until the session is gone so a failed logout can be retried.
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("logout").Inc()
	h.cookies.Clear(c)
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every session of the caller.
//
// @Summary      Sign out everywhere
// @Tags         auth
// @Produce      json
// @Success      200  {object}  revokedResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	n, err := h.authService.LogoutAll(c.Request().Context(), id)
	if err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("logout_all").Add(float64(n))

	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, revokedResponse{Revoked: n})
}

// Me returns the authenticated caller.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

// Sessions lists the caller's live sessions.
//
// @Summary      Active sessions
// @Tags         auth
// @Produce      json
// @Success      200  {array}   sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/sessions [get]
func (h *AuthHandler) Sessions(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.authService.Sessions(c.Request().Context(), id)
	if err != nil {
		return err
	}

	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, sessionResponse{
			ID:        s.ID,
			IPAddress: s.Provenance.IPAddress,
			UserAgent: s.Provenance.UserAgent,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			Current:   s.ID == id.SessionID,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ChangePassword replaces the caller's password and signs them out everywhere.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("password_change").Inc()

	h.cookies.Clear(c)
	return c.NoContent(http.StatusNoContent)
}
