// Package apperrors holds the error kinds shared by the registration core,
// its adapters and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSessionExpired         = errors.New("registration session expired, please start again from step 1")
	ErrDuplicateEmail         = errors.New("an account with this email already exists")
	ErrRecordNotFound         = errors.New("record not found")
	ErrConcurrentModification = errors.New("record was modified concurrently, reload and retry")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTokenExpired           = errors.New("token has expired")
	ErrTokenInvalid           = errors.New("invalid token")
	ErrForbidden              = errors.New("access denied")
)

// FieldError describes one failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError enumerates every failing field of a request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// DocumentProblem is a single rejected document.
type DocumentProblem struct {
	DocumentType string `json:"documentType"`
	Reason       string `json:"reason"`
}

// InvalidDocumentError is returned before any document reaches external storage.
type InvalidDocumentError struct {
	Problems []DocumentProblem `json:"problems"`
}

func (e *InvalidDocumentError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.DocumentType+": "+p.Reason)
	}
	return "invalid document: " + strings.Join(parts, "; ")
}

// External collaborators named in ExternalServiceError.
const (
	ServiceDocumentStore = "documentStore"
	ServiceEmail         = "email"
	ServiceIdentity      = "identityProvider"
)

// ExternalServiceError wraps a failure of the document store, mail server or identity provider.
type ExternalServiceError struct {
	Which string
	Err   error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Which, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IncompleteVerificationError lists the required documents that block approval.
type IncompleteVerificationError struct {
	MissingDocs []string `json:"missingDocs"`
}

func (e *IncompleteVerificationError) Error() string {
	return "required documents not verified: " + strings.Join(e.MissingDocs, ", ")
}

// InvalidTransitionError is returned when an action is not allowed from the current status.
type InvalidTransitionError struct {
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a registration in status %q", e.Action, e.From)
}

// AccountLockedError is returned while an account is cooling down after failed logins.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return "too many failed login attempts, try again after " + e.Until.UTC().Format(time.RFC3339)
}

// External is a helper for wrapping collaborator failures.
func External(which string, err error) error {
	return &ExternalServiceError{Which: which, Err: err}
}
