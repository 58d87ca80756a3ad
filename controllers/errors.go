package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/services"
)

// respondError maps domain errors onto the response envelope
func respondError(c echo.Context, err error) error {
	var (
		validationErr *apperrors.ValidationError
		documentErr   *apperrors.InvalidDocumentError
		externalErr   *apperrors.ExternalServiceError
		incompleteErr *apperrors.IncompleteVerificationError
		transitionErr *apperrors.InvalidTransitionError
		lockedErr     *apperrors.AccountLockedError
	)

	switch {
	case errors.As(err, &validationErr):
		return reply(c, http.StatusUnprocessableEntity, "Validation failed", map[string]interface{}{"fields": validationErr.Fields})
	case errors.As(err, &documentErr):
		return reply(c, http.StatusUnprocessableEntity, "One or more documents were rejected", map[string]interface{}{"problems": documentErr.Problems})
	case errors.As(err, &incompleteErr):
		return reply(c, http.StatusConflict, "Required documents are not verified", map[string]interface{}{"missingDocs": incompleteErr.MissingDocs})
	case errors.As(err, &transitionErr):
		return reply(c, http.StatusConflict, transitionErr.Error(), map[string]interface{}{"from": transitionErr.From, "action": transitionErr.Action})
	case errors.As(err, &lockedErr):
		retry := int(time.Until(lockedErr.Until).Seconds()) + 1
		if retry < 1 {
			retry = 1
		}
		c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
		return reply(c, http.StatusTooManyRequests, "Too many failed login attempts", map[string]interface{}{"lockedUntil": lockedErr.Until})
	case errors.As(err, &externalErr):
		log.Printf("External service %s failed on %s %s: %v", externalErr.Which, c.Request().Method, c.Path(), externalErr.Err)
		return reply(c, http.StatusBadGateway, "A dependent service is unavailable, please retry", map[string]interface{}{"service": externalErr.Which})
	case errors.Is(err, apperrors.ErrSessionExpired):
		return reply(c, http.StatusUnauthorized, apperrors.ErrSessionExpired.Error(), map[string]interface{}{"resumeFromStep": models.StepBusinessInfo})
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return reply(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperrors.ErrConcurrentModification):
		return reply(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return reply(c, http.StatusNotFound, "Registration not found", nil)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return reply(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, apperrors.ErrTokenExpired):
		return reply(c, http.StatusUnauthorized, "Token has expired", nil)
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return reply(c, http.StatusUnauthorized, "Invalid token", nil)
	case errors.Is(err, apperrors.ErrForbidden):
		return reply(c, http.StatusForbidden, err.Error(), nil)
	default:
		log.Printf("Unhandled error (%s) on %s %s: %v", services.ErrorKind(err), c.Request().Method, c.Path(), err)
		return reply(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func reply(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func badRequest(c echo.Context, message string) error {
	return reply(c, http.StatusBadRequest, message, nil)
}
