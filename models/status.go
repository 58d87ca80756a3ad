package models

// Presentation tones
const (
	ToneInfo    = "info"
	ToneWarning = "warning"
	ToneSuccess = "success"
	ToneDanger  = "danger"
)

// StatusInfo is the single source of display metadata for a registration status
type StatusInfo struct {
	Status       RegistrationStatus `json:"status"`
	Label        string             `json:"label"`
	Tone         string             `json:"tone"`
	Description  string             `json:"description"`
	VendorAction string             `json:"vendorAction,omitempty"`
	Terminal     bool               `json:"terminal"`
}

// StatusPresentation maps a status to how clients should show it.
// Unknown statuses get a neutral entry rather than an error.
func StatusPresentation(status RegistrationStatus) StatusInfo {
	switch status {
	case StatusPendingDocuments:
		return StatusInfo{
			Status:       status,
			Label:        "Documents Pending",
			Tone:         ToneWarning,
			Description:  "Your registration needs documents before it can be reviewed.",
			VendorAction: "Upload the requested documents and resubmit for review.",
		}
	case StatusPendingReview:
		return StatusInfo{
			Status:      status,
			Label:       "Under Review",
			Tone:        ToneInfo,
			Description: "Our team is reviewing your registration and documents.",
		}
	case StatusApproved:
		return StatusInfo{
			Status:      status,
			Label:       "Approved",
			Tone:        ToneSuccess,
			Description: "Your vendor account is active.",
		}
	case StatusRejected:
		return StatusInfo{
			Status:       status,
			Label:        "Rejected",
			Tone:         ToneDanger,
			Description:  "Your registration was not approved.",
			VendorAction: "Check the reviewer notes. A reviewer may reopen your application for new documents.",
			Terminal:     true,
		}
	case StatusSuspended:
		return StatusInfo{
			Status:       status,
			Label:        "Suspended",
			Tone:         ToneDanger,
			Description:  "Your vendor account has been suspended.",
			VendorAction: "Contact support to resolve the suspension.",
			Terminal:     true,
		}
	default:
		return StatusInfo{
			Status:      status,
			Label:       "Unknown",
			Tone:        ToneInfo,
			Description: "Registration status is not recognised.",
		}
	}
}

// StatusCatalog returns the presentation of every status in lifecycle order
func StatusCatalog() []StatusInfo {
	out := make([]StatusInfo, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		out = append(out, StatusPresentation(s))
	}
	return out
}
