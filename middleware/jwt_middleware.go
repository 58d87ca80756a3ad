// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/services"
)

// Context keys set by the session middleware
const (
	ContextUserID = "userId"
	ContextRole   = "role"
	ContextEmail  = "email"
	ContextClaims = "claims"
)

// TokenVerifier is the part of services.TokenService the middleware needs
type TokenVerifier interface {
	Verify(tokenString, purpose string) (*services.TokenClaims, error)
}

// Authenticator validates bearer tokens on protected routes
type Authenticator struct {
	tokens      TokenVerifier
	revocations services.TokenRevocationStore
}

// NewAuthenticator builds the session middleware. revocations may be nil.
func NewAuthenticator(tokens TokenVerifier, revocations services.TokenRevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revocations: revocations}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// JWTMiddleware accepts access tokens and stores the caller in the context
func (a *Authenticator) JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return unauthorized(c, "Please provide valid credentials")
			}

			claims, err := a.tokens.Verify(token, services.PurposeAccess)
			if err != nil {
				if errors.Is(err, apperrors.ErrTokenExpired) {
					return unauthorized(c, "Session has expired, please log in again")
				}
				return unauthorized(c, "Invalid or expired token")
			}

			if a.revocations != nil {
				revoked, err := a.revocations.IsRevoked(c.Request().Context(), claims.Id)
				if err != nil {
					log.Printf("JWT middleware - revocation lookup failed: %v", err)
					return c.JSON(http.StatusServiceUnavailable, models.Response{
						Status:  http.StatusServiceUnavailable,
						Message: "Session store unavailable",
					})
				}
				if revoked {
					return unauthorized(c, "Token has been invalidated")
				}
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, claims.Role)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextClaims, claims)
			return next(c)
		}
	}
}

// GetUserFromToken returns the verified claims of the current request
func GetUserFromToken(c echo.Context) *services.TokenClaims {
	claims, _ := c.Get(ContextClaims).(*services.TokenClaims)
	return claims
}

// ExtractUserID returns the caller id as an ObjectID
func ExtractUserID(c echo.Context) (primitive.ObjectID, error) {
	userID, _ := c.Get(ContextUserID).(string)
	if userID == "" {
		return primitive.NilObjectID, apperrors.ErrTokenInvalid
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrTokenInvalid
	}
	return id, nil
}

// ExtractRole safely extracts the session role from the context
func ExtractRole(c echo.Context) string {
	role, _ := c.Get(ContextRole).(string)
	return role
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: message,
	})
}
