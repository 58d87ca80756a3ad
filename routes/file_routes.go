package routes

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/models"
)

// RegisterFileRoutes serves documents kept by the local document store. Only reviewers may read them.
func RegisterFileRoutes(e *echo.Echo, uploadDir string, sessions *middleware.Authenticator) {
	files := e.Group("/uploads")
	files.Use(sessions.JWTMiddleware())
	files.Use(middleware.RequireRole(models.RoleAdmin))
	files.GET("/*", ServeFile(uploadDir))
}

// ServeFile handles serving uploaded files with proper security checks
func ServeFile(uploadDir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Param("*")
		if path == "" {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "File not found",
			})
		}

		// Clean the path to prevent directory traversal
		cleanPath := filepath.Clean("/" + path)
		if strings.Contains(cleanPath, "..") {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied - invalid path",
			})
		}
		fullPath := filepath.Join(uploadDir, cleanPath)

		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return c.JSON(http.StatusNotFound, models.Response{
					Status:  http.StatusNotFound,
					Message: "File not found",
				})
			}
			log.Printf("Error accessing file %s: %v", fullPath, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Error accessing file",
			})
		}

		// Don't allow directory listing
		if info.IsDir() {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied - directory listing not allowed",
			})
		}

		c.Response().Header().Set("Cache-Control", "private, no-store")
		return c.File(fullPath)
	}
}
