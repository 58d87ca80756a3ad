package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/controllers"
	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/models"
)

// RegisterAdminRoutes sets up the reviewer workflow
func RegisterAdminRoutes(e *echo.Echo, reviewController *controllers.ReviewController, sessions *middleware.Authenticator) {
	admin := e.Group("/api/admin")
	admin.Use(sessions.JWTMiddleware())
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.GET("/registrations", reviewController.ListRegistrations)
	admin.GET("/registrations/:id", reviewController.GetRegistration)

	admin.POST("/registrations/:id/documents/:type/verify", reviewController.VerifyDocument)
	admin.POST("/registrations/:id/documents/:type/unverify", reviewController.UnverifyDocument)

	admin.POST("/registrations/:id/approve", reviewController.Approve)
	admin.POST("/registrations/:id/reject", reviewController.Reject)
	admin.POST("/registrations/:id/request-documents", reviewController.RequestDocuments)
	admin.POST("/registrations/:id/suspend", reviewController.Suspend)
	admin.POST("/registrations/:id/reinstate", reviewController.Reinstate)
}
