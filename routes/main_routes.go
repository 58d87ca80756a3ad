package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/controllers"
	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/websocket"
)

// Controllers groups everything the router needs
type Controllers struct {
	Registration *controllers.RegistrationController
	Review       *controllers.ReviewController
	Auth         *controllers.AuthController
	WebSocket    *websocket.Handler
	Sessions     *middleware.Authenticator
	// UploadDir enables /uploads for the local document store; empty disables it
	UploadDir string
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, c Controllers) {
	RegisterAuthRoutes(e, c.Auth)
	RegisterRegistrationRoutes(e, c.Registration, c.Sessions)
	RegisterAdminRoutes(e, c.Review, c.Sessions)

	e.GET("/api/ws", c.WebSocket.HandleWebSocket)

	if c.UploadDir != "" {
		RegisterFileRoutes(e, c.UploadDir, c.Sessions)
	}
}
