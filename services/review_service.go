package services

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

const (
	actionVerifyDocument   = "verify_document"
	actionUnverifyDocument = "unverify_document"
	maxListLimit           = 100
)

const noteRules = "required,min=3,max=2000"

// ReviewService holds the reviewer side of the workflow: per-document
// verification and the status decisions on a submitted registration.
type ReviewService struct {
	store     RegistrationStore
	notifier  Notifier
	emails    *EmailComposer
	events    EventPublisher
	validator *Validator
	policies  models.DocumentPolicies
	now       func() time.Time
}

func NewReviewService(store RegistrationStore, notifier Notifier, emails *EmailComposer, events EventPublisher, policies models.DocumentPolicies) *ReviewService {
	if events == nil {
		events = noopPublisher{}
	}
	if policies == nil {
		policies = models.DefaultDocumentPolicies()
	}
	if emails == nil {
		emails = NewEmailComposer("")
	}
	return &ReviewService{
		store:     store,
		notifier:  notifier,
		emails:    emails,
		events:    events,
		validator: NewValidator(),
		policies:  policies,
		now:       time.Now,
	}
}

// List returns registrations, optionally filtered by status
func (s *ReviewService) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.VendorRegistration, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, validationError(apperrors.FieldError{Field: "status", Rule: "oneof", Message: describe("oneof", "")})
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	return s.store.List(ctx, filter)
}

func (s *ReviewService) Get(ctx context.Context, id primitive.ObjectID) (*models.VendorRegistration, error) {
	return s.store.FindByID(ctx, id)
}

// VerifyDocument marks one uploaded document as checked. Verifying twice is a no-op.
func (s *ReviewService) VerifyDocument(ctx context.Context, adminID, regID primitive.ObjectID, docType models.DocumentType) (reg *models.VendorRegistration, err error) {
	defer func() { observe(actionVerifyDocument, err) }()

	reg, err = applyPatch(ctx, s.store, regID, 1, s.now, func(r *models.VendorRegistration) (*models.RegistrationPatch, error) {
		record, err := reviewableDocument(r, docType, actionVerifyDocument)
		if err != nil {
			return nil, err
		}
		if record.Verified {
			return nil, nil
		}
		now := s.now()
		record.Verified = true
		record.VerifiedBy = &adminID
		record.VerifiedAt = &now
		return &models.RegistrationPatch{
			Documents: map[models.DocumentType]models.DocumentRecord{docType: record},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDocumentChange(reg, docType, "Document "+string(docType)+" verified")
	return reg, nil
}

// UnverifyDocument retracts a verification and records why
func (s *ReviewService) UnverifyDocument(ctx context.Context, adminID, regID primitive.ObjectID, docType models.DocumentType, note string) (reg *models.VendorRegistration, err error) {
	defer func() { observe(actionUnverifyDocument, err) }()

	note = strings.TrimSpace(note)
	if fields := s.validator.Var("note", note, noteRules); len(fields) > 0 {
		return nil, validationError(fields...)
	}

	reg, err = applyPatch(ctx, s.store, regID, 1, s.now, func(r *models.VendorRegistration) (*models.RegistrationPatch, error) {
		record, err := reviewableDocument(r, docType, actionUnverifyDocument)
		if err != nil {
			return nil, err
		}
		now := s.now()
		record.Verified = false
		record.VerifiedBy = nil
		record.VerifiedAt = nil
		return &models.RegistrationPatch{
			Documents: map[models.DocumentType]models.DocumentRecord{docType: record},
			AppendNote: &models.AdminNote{
				Note:    note,
				Action:  models.NoteActionUnverify + ":" + string(docType),
				AddedBy: adminID,
				AddedAt: now,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDocumentChange(reg, docType, "Document "+string(docType)+" needs attention: "+note)
	return reg, nil
}

func reviewableDocument(r *models.VendorRegistration, docType models.DocumentType, action string) (models.DocumentRecord, error) {
	if !documentReviewable(r.RegistrationStatus) {
		return models.DocumentRecord{}, &apperrors.InvalidTransitionError{From: string(r.RegistrationStatus), Action: action}
	}
	record, ok := r.Documents[docType]
	if !ok {
		return models.DocumentRecord{}, validationError(apperrors.FieldError{
			Field: "documents." + string(docType), Rule: "exists", Message: "has not been uploaded",
		})
	}
	return record, nil
}

// Approve accepts a registration once every required document is verified.
// The missing documents are reported in fixed document order.
func (s *ReviewService) Approve(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error) {
	return s.decide(ctx, ActionApprove, adminID, regID, note, false, templateApproved, func(r *models.VendorRegistration) error {
		var missing []string
		for _, docType := range s.policies.Required() {
			if record, ok := r.Documents[docType]; !ok || !record.Verified {
				missing = append(missing, string(docType))
			}
		}
		if len(missing) > 0 {
			return &apperrors.IncompleteVerificationError{MissingDocs: missing}
		}
		return nil
	})
}

func (s *ReviewService) Reject(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error) {
	return s.decide(ctx, ActionReject, adminID, regID, note, true, templateRejected, nil)
}

// RequestMoreDocuments sends the registration back to the vendor
func (s *ReviewService) RequestMoreDocuments(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error) {
	return s.decide(ctx, ActionRequestDocuments, adminID, regID, note, true, templateDocumentsRequired, nil)
}

func (s *ReviewService) Suspend(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error) {
	return s.decide(ctx, ActionSuspend, adminID, regID, note, true, templateSuspended, nil)
}

func (s *ReviewService) Reinstate(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error) {
	return s.decide(ctx, ActionReinstate, adminID, regID, note, true, templateReinstated, nil)
}

var noteActions = map[string]string{
	ActionApprove:          models.NoteActionApprove,
	ActionReject:           models.NoteActionReject,
	ActionRequestDocuments: models.NoteActionRequestDocs,
	ActionSuspend:          models.NoteActionSuspend,
	ActionReinstate:        models.NoteActionReinstate,
}

// decide runs one reviewer status change under CAS. A concurrent write by
// another reviewer surfaces as ErrConcurrentModification.
func (s *ReviewService) decide(ctx context.Context, action string, adminID, regID primitive.ObjectID, note string, requireNote bool, template string,
	precondition func(*models.VendorRegistration) error) (reg *models.VendorRegistration, err error) {
	defer func() { observe(action, err) }()

	note = strings.TrimSpace(note)
	if requireNote || note != "" {
		if fields := s.validator.Var("note", note, noteRules); len(fields) > 0 {
			return nil, validationError(fields...)
		}
	}

	reg, err = applyPatch(ctx, s.store, regID, 1, s.now, func(r *models.VendorRegistration) (*models.RegistrationPatch, error) {
		to, err := nextStatus(r.RegistrationStatus, action)
		if err != nil {
			return nil, err
		}
		if precondition != nil {
			if err := precondition(r); err != nil {
				return nil, err
			}
		}
		now := s.now()
		patch := &models.RegistrationPatch{
			RegistrationStatus: &to,
			ReviewedAt:         &now,
			ReviewedBy:         &adminID,
		}
		if note != "" {
			patch.AppendNote = &models.AdminNote{Note: note, Action: noteActions[action], AddedBy: adminID, AddedAt: now}
		}
		return patch, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Registration %s: %s by admin %s, status now %s", reg.ID.Hex(), action, adminID.Hex(), reg.RegistrationStatus)
	sendBestEffort(ctx, s.notifier, s.emails, template, reg, note)

	event := newEvent(models.EventRegistrationStatus, reg, models.StatusPresentation(reg.RegistrationStatus).Description)
	s.events.PublishToUser(reg.ID, event)
	s.events.PublishToAdmins(event)
	return reg, nil
}

func (s *ReviewService) publishDocumentChange(reg *models.VendorRegistration, docType models.DocumentType, message string) {
	event := newEvent(models.EventDocumentVerification, reg, message)
	event.DocumentType = docType
	s.events.PublishToUser(reg.ID, event)
	s.events.PublishToAdmins(event)
}
