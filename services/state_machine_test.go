package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   models.RegistrationStatus
		action string
		to     models.RegistrationStatus
	}{
		{models.StatusPendingReview, ActionApprove, models.StatusApproved},
		{models.StatusPendingReview, ActionReject, models.StatusRejected},
		{models.StatusPendingReview, ActionRequestDocuments, models.StatusPendingDocuments},
		{models.StatusRejected, ActionRequestDocuments, models.StatusPendingDocuments},
		{models.StatusApproved, ActionSuspend, models.StatusSuspended},
		{models.StatusSuspended, ActionReinstate, models.StatusApproved},
		{models.StatusPendingDocuments, ActionResubmit, models.StatusPendingReview},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+tt.action, func(t *testing.T) {
			got, err := nextStatus(tt.from, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestNextStatus_Invalid(t *testing.T) {
	invalid := []struct {
		from   models.RegistrationStatus
		action string
	}{
		{models.StatusPendingDocuments, ActionApprove},
		{models.StatusRejected, ActionApprove},
		{models.StatusApproved, ActionReject},
		{models.StatusPendingReview, ActionSuspend},
		{models.StatusApproved, ActionReinstate},
		{models.StatusSuspended, ActionRequestDocuments},
		{models.StatusPendingReview, "archive"},
	}
	for _, tt := range invalid {
		_, err := nextStatus(tt.from, tt.action)
		var terr *apperrors.InvalidTransitionError
		require.ErrorAs(t, err, &terr, "%s/%s", tt.from, tt.action)
		assert.Equal(t, string(tt.from), terr.From)
		assert.Equal(t, tt.action, terr.Action)
	}
}

func TestDocumentReviewable(t *testing.T) {
	assert.True(t, documentReviewable(models.StatusPendingDocuments))
	assert.True(t, documentReviewable(models.StatusPendingReview))
	assert.True(t, documentReviewable(models.StatusRejected))
	assert.False(t, documentReviewable(models.StatusApproved))
	assert.False(t, documentReviewable(models.StatusSuspended))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "validation", ErrorKind(&apperrors.ValidationError{}))
	assert.Equal(t, "external_email", ErrorKind(apperrors.External(apperrors.ServiceEmail, assert.AnError)))
	assert.Equal(t, "session_expired", ErrorKind(apperrors.ErrSessionExpired))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
}
