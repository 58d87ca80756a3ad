// controllers/auth_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/services"
)

type AuthController struct {
	auth    *services.AuthService
	timeout time.Duration
}

func NewAuthController(auth *services.AuthService, timeout time.Duration) *AuthController {
	return &AuthController{auth: auth, timeout: timeout}
}

// Login handles email and password login for vendors and admins
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ac.timeout)
	defer cancel()

	res, err := ac.auth.Login(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Login successful", res)
}

func (ac *AuthController) GoogleLogin(c echo.Context) error {
	var req models.GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.IDToken == "" {
		return respondError(c, validationError("idToken", "required", "This field is required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ac.timeout)
	defer cancel()

	res, err := ac.auth.GoogleLogin(ctx, req.IDToken)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Login successful", res)
}

// Refresh rotates a refresh token into a new session
func (ac *AuthController) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ac.timeout)
	defer cancel()

	res, err := ac.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Token refreshed", res)
}

func (ac *AuthController) Logout(c echo.Context) error {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ac.timeout)
	defer cancel()

	if err := ac.auth.Logout(ctx, req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Logged out successfully", nil)
}

// ForgotPassword always answers the same way so it reveals nothing about which accounts exist
func (ac *AuthController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ac.timeout)
	defer cancel()

	ac.auth.ForgotPassword(ctx, req.Email)
	return reply(c, http.StatusOK, "If an account exists for this email, a reset link has been sent", nil)
}

func (ac *AuthController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ac.timeout)
	defer cancel()

	if err := ac.auth.ResetPassword(ctx, req); err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Password has been reset", nil)
}
