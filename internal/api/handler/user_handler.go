package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/api/metrics"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// UserHandler serves the admin account and session management routes.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager programmer"`
}

type sweepResponse struct {
	Removed int64 `json:"removed"`
}

// Create registers a new account.
//
// @Summary      Create user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Deactivate disables an account and revokes all of its sessions.
//
// @Summary      Deactivate user
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  revokedResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c echo.Context) error {
	actor, err := callerIdentity(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	n, err := h.authService.DeactivateUser(c.Request().Context(), actor, userID)
	if err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("deactivation").Add(float64(n))
	return c.JSON(http.StatusOK, revokedResponse{Revoked: n})
}

// SignOut revokes every session of a user without disabling the account.
//
// @Summary      Force sign-out
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  revokedResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/users/{id}/sign-out [post]
func (h *UserHandler) SignOut(c echo.Context) error {
	actor, err := callerIdentity(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	n, err := h.authService.ForceSignOut(c.Request().Context(), actor, userID)
	if err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("forced").Add(float64(n))
	return c.JSON(http.StatusOK, revokedResponse{Revoked: n})
}

// SweepSessions deletes expired sessions now.
//
// @Summary      Sweep expired sessions
// @Tags         admin
// @Produce      json
// @Success      200  {object}  sweepResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/sessions/sweep [post]
func (h *UserHandler) SweepSessions(c echo.Context) error {
	n, err := h.authService.SweepExpired(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweepResponse{Removed: n})
}
