package models

import "time"

// Registration event types pushed to connected clients
const (
	EventRegistrationSubmitted   = "registration_submitted"
	EventRegistrationResubmitted = "registration_resubmitted"
	EventRegistrationStatus      = "registration_status_changed"
	EventDocumentReuploaded      = "document_reuploaded"
	EventDocumentVerification    = "document_verification_changed"
)

// RegistrationEvent is a notification about a registration change
type RegistrationEvent struct {
	Type           string             `json:"type"`
	RegistrationID string             `json:"registrationId"`
	BusinessName   string             `json:"businessName,omitempty"`
	Status         RegistrationStatus `json:"status,omitempty"`
	DocumentType   DocumentType       `json:"documentType,omitempty"`
	Message        string             `json:"message"`
	OccurredAt     time.Time          `json:"occurredAt"`
}
