package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/raffleworks/lottery-service/internal/api/dto"
	"github.com/raffleworks/lottery-service/internal/auth"
	"github.com/raffleworks/lottery-service/internal/repository"
	"github.com/raffleworks/lottery-service/internal/service"
	apperrors "github.com/raffleworks/lottery-service/pkg/util/errorutil"
)

// UsersHandler exposes auth endpoints for accounts.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if problems := req.Problems(); len(problems) > 0 {
		return apperrors.NewValidationError("invalid registration", problems)
	}

	user, token, exp, err := h.auth.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrEmailTaken):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		return apperrors.NewValidationError(err.Error(), map[string]any{"password": err.Error()})
	default:
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{
		User: dto.NewUserResponse(user),
		Auth: dto.AuthResponse{Token: token, ExpiresAt: exp},
	}})
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized(err.Error())
	case errors.Is(err, service.ErrAccountSuspended):
		return apperrors.NewForbidden(err.Error())
	default:
		return err
	}

	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		User: dto.NewUserResponse(user),
		Auth: dto.AuthResponse{Token: token, ExpiresAt: exp},
	}})
}
