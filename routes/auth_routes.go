package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/controllers"
)

// RegisterAuthRoutes sets up login, session and password routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")

	auth.POST("/login", authController.Login)
	auth.POST("/google", authController.GoogleLogin)
	auth.POST("/refresh", authController.Refresh)
	auth.POST("/logout", authController.Logout)
	auth.POST("/forgot-password", authController.ForgotPassword)
	auth.POST("/reset-password", authController.ResetPassword)
}
