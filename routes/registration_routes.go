package routes

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/evea/evea_backend/controllers"
	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/models"
)

// Multipart bodies carry up to five documents
const documentBodyLimit = "30M"

// RegisterRegistrationRoutes sets up the vendor onboarding flow
func RegisterRegistrationRoutes(e *echo.Echo, registrationController *controllers.RegistrationController, sessions *middleware.Authenticator) {
	e.GET("/api/registration/statuses", registrationController.Statuses)

	// Steps 2 and 3 carry the registration token in the Authorization header
	register := e.Group("/api/vendor/register")
	register.POST("/step1", registrationController.SubmitStep1)
	register.POST("/step2", registrationController.SubmitStep2, echoMiddleware.BodyLimit(documentBodyLimit))
	register.POST("/step3", registrationController.SubmitStep3)
	register.GET("/progress", registrationController.Progress)

	e.GET("/api/vendor/verify-email", registrationController.VerifyEmail)

	// Logged in vendors
	vendor := e.Group("/api/vendor")
	vendor.Use(sessions.JWTMiddleware())
	vendor.Use(middleware.RequireRole(models.RoleVendor))
	vendor.GET("/registration", registrationController.GetMyRegistration)
	vendor.POST("/registration/resubmit", registrationController.Resubmit)
	vendor.PUT("/documents/:type", registrationController.ReuploadDocument, echoMiddleware.BodyLimit(documentBodyLimit))
}
