package services

import (
	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

// Status-changing actions
const (
	ActionApprove          = "approve"
	ActionReject           = "reject"
	ActionRequestDocuments = "request_documents"
	ActionSuspend          = "suspend"
	ActionReinstate        = "reinstate"
	ActionResubmit         = "resubmit"
)

type transition struct {
	from []models.RegistrationStatus
	to   models.RegistrationStatus
}

var transitions = map[string]transition{
	ActionApprove: {
		from: []models.RegistrationStatus{models.StatusPendingReview},
		to:   models.StatusApproved,
	},
	ActionReject: {
		from: []models.RegistrationStatus{models.StatusPendingReview},
		to:   models.StatusRejected,
	},
	ActionRequestDocuments: {
		from: []models.RegistrationStatus{models.StatusPendingReview, models.StatusRejected},
		to:   models.StatusPendingDocuments,
	},
	ActionSuspend: {
		from: []models.RegistrationStatus{models.StatusApproved},
		to:   models.StatusSuspended,
	},
	ActionReinstate: {
		from: []models.RegistrationStatus{models.StatusSuspended},
		to:   models.StatusApproved,
	},
	ActionResubmit: {
		from: []models.RegistrationStatus{models.StatusPendingDocuments},
		to:   models.StatusPendingReview,
	},
}

// nextStatus returns the status an action leads to, or an InvalidTransitionError
func nextStatus(from models.RegistrationStatus, action string) (models.RegistrationStatus, error) {
	t, ok := transitions[action]
	if ok {
		for _, allowed := range t.from {
			if allowed == from {
				return t.to, nil
			}
		}
	}
	return "", &apperrors.InvalidTransitionError{From: string(from), Action: action}
}

// documentReviewable is the set of statuses in which reviewers may (un)verify documents
func documentReviewable(status models.RegistrationStatus) bool {
	switch status {
	case models.StatusPendingDocuments, models.StatusPendingReview, models.StatusRejected:
		return true
	}
	return false
}

// vendorCanReupload reports whether a vendor may replace documents in status
func vendorCanReupload(status models.RegistrationStatus) bool {
	return status != models.StatusApproved && status != models.StatusSuspended
}
