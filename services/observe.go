package services

import (
	"errors"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/metrics"
)

// observe counts the outcome of a state machine operation
func observe(action string, err error) {
	if err == nil {
		metrics.Transition(action)
		return
	}
	metrics.Failure(action, ErrorKind(err))
}

// ErrorKind classifies an error for metrics and logs
func ErrorKind(err error) string {
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
		return "validation"
	case errors.As(err, &documentErr):
		return "invalid_document"
	case errors.As(err, &externalErr):
		return "external_" + externalErr.Which
	case errors.As(err, &incompleteErr):
		return "incomplete_verification"
	case errors.As(err, &transitionErr):
		return "invalid_transition"
	case errors.As(err, &lockedErr):
		return "account_locked"
	case errors.Is(err, apperrors.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, apperrors.ErrTokenInvalid):
		return "token"
	default:
		return "internal"
	}
}
