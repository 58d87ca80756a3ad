package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/metrics"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/utils"
)

// Operation names used in metrics
const (
	actionStep1       = "step1"
	actionStep2       = "step2"
	actionStep3       = "step3"
	actionVerifyEmail = "verify_email"
	actionReupload    = "reupload_document"
)

const (
	emailVerifyAttempts  = 3
	cleanupTimeout       = 30 * time.Second
	defaultUploadWorkers = 3
)

// passwordHashCost is lowered in tests
var passwordHashCost = bcrypt.DefaultCost

// RegistrationDeps wires the collaborators of RegistrationService
type RegistrationDeps struct {
	Store             RegistrationStore
	Documents         DocumentStore
	Notifier          Notifier
	Tokens            *TokenService
	Identity          IdentityVerifier
	Events            EventPublisher
	Validator         *Validator
	Emails            *EmailComposer
	Policies          models.DocumentPolicies
	UploadConcurrency int
}

// RegistrationService drives a vendor registration through its three steps
// and the vendor-side actions that follow.
type RegistrationService struct {
	store             RegistrationStore
	documents         DocumentStore
	notifier          Notifier
	tokens            *TokenService
	identity          IdentityVerifier
	events            EventPublisher
	validator         *Validator
	emails            *EmailComposer
	policies          models.DocumentPolicies
	uploadConcurrency int
	now               func() time.Time
}

func NewRegistrationService(deps RegistrationDeps) *RegistrationService {
	s := &RegistrationService{
		store:             deps.Store,
		documents:         deps.Documents,
		notifier:          deps.Notifier,
		tokens:            deps.Tokens,
		identity:          deps.Identity,
		events:            deps.Events,
		validator:         deps.Validator,
		emails:            deps.Emails,
		policies:          deps.Policies,
		uploadConcurrency: deps.UploadConcurrency,
		now:               time.Now,
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.validator == nil {
		s.validator = NewValidator()
	}
	if s.policies == nil {
		s.policies = models.DefaultDocumentPolicies()
	}
	if s.emails == nil {
		s.emails = NewEmailComposer("")
	}
	if s.uploadConcurrency < 1 {
		s.uploadConcurrency = defaultUploadWorkers
	}
	return s
}

// Policies exposes the active document policies
func (s *RegistrationService) Policies() []models.DocumentPolicy {
	return s.policies.Ordered()
}

// SubmitStep1 validates business info and credentials, creates the registration
// and sends the verification email. The record is removed again if the email cannot be sent.
func (s *RegistrationService) SubmitStep1(ctx context.Context, req models.Step1Request) (res *models.RegistrationResult, err error) {
	defer func() { observe(actionStep1, err) }()

	req.BusinessInfo = normalizeBusinessInfo(req.BusinessInfo)
	if err := s.validator.Struct("", req); err != nil {
		return nil, err
	}
	info := req.BusinessInfo

	if _, err := s.store.FindByEmail(ctx, info.Email); err == nil {
		return nil, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, apperrors.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	creds := models.StoredCredentials{AuthMethod: req.Credentials.AuthMethod}
	emailVerified := false
	switch req.Credentials.AuthMethod {
	case models.AuthMethodGoogle:
		identity, err := s.verifyGoogleIdentity(ctx, req.Credentials.GoogleIDToken, info.Email)
		if err != nil {
			return nil, err
		}
		creds.GoogleSubject = identity.Subject
		emailVerified = identity.EmailVerified
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Credentials.Password), passwordHashCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		creds.PasswordHash = string(hash)
	}

	now := s.now()
	reg := &models.VendorRegistration{
		Step:               models.StepBusinessInfo,
		RegistrationStatus: models.StatusPendingDocuments,
		BusinessInfo:       info,
		Credentials:        creds,
		EmailVerified:      emailVerified,
		Documents:          map[models.DocumentType]models.DocumentRecord{},
		Services:           []models.ServiceOffering{},
		AdminNotes:         []models.AdminNote{},
		ProfileCompletion:  models.ProfileCompletionForStep(models.StepBusinessInfo),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if emailVerified {
		reg.EmailVerifiedAt = &now
	}

	id, err := s.store.Create(ctx, reg)
	if err != nil {
		return nil, err
	}
	reg.ID = id

	if !emailVerified {
		if err := s.sendVerificationEmail(ctx, reg); err != nil {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), id); delErr != nil {
				log.Printf("Failed to roll back registration %s after email failure: %v", id.Hex(), delErr)
			}
			return nil, apperrors.External(apperrors.ServiceEmail, err)
		}
	}

	token, err := s.tokens.IssueRegistrationToken(id.Hex(), models.StepBusinessInfo)
	if err != nil {
		return nil, err
	}

	log.Printf("Vendor registration %s created for %s", id.Hex(), info.Email)
	return models.NewRegistrationResult(reg, token), nil
}

func (s *RegistrationService) verifyGoogleIdentity(ctx context.Context, idToken, email string) (*models.GoogleIdentity, error) {
	if s.identity == nil {
		return nil, apperrors.External(apperrors.ServiceIdentity, errors.New("google sign-in is not configured"))
	}
	identity, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenInvalid) || errors.Is(err, apperrors.ErrTokenExpired) {
			return nil, validationError(apperrors.FieldError{
				Field: "credentials.googleIdToken", Rule: "invalid", Message: "google sign-in could not be verified",
			})
		}
		return nil, apperrors.External(apperrors.ServiceIdentity, err)
	}
	if !strings.EqualFold(identity.Email, email) {
		return nil, validationError(apperrors.FieldError{
			Field: "businessInfo.email", Rule: "google_email", Message: "must match the Google account email",
		})
	}
	return identity, nil
}

func (s *RegistrationService) sendVerificationEmail(ctx context.Context, reg *models.VendorRegistration) error {
	token, err := s.tokens.IssueEmailVerification(reg.ID.Hex(), reg.BusinessInfo.Email)
	if err != nil {
		return err
	}
	email, err := s.emails.Verification(reg, token)
	if err == nil {
		err = s.notifier.Send(ctx, email)
	}
	metrics.Email(templateVerification, err)
	return err
}

// SubmitStep2 validates and uploads the compliance documents, then records them
// together with bank details and registration numbers.
func (s *RegistrationService) SubmitStep2(ctx context.Context, token string, sub models.Step2Submission) (res *models.RegistrationResult, err error) {
	defer func() { observe(actionStep2, err) }()

	reg, err := s.resolveRegistration(ctx, token, models.StepDocuments)
	if err != nil {
		return nil, err
	}

	bank := normalizeBankDetails(sub.BankDetails)
	numbers := normalizeRegistrationNumbers(sub.RegistrationNumbers)

	fields := s.validator.Fields("bankDetails", bank)
	fields = append(fields, s.validator.Fields("registrationNumbers", numbers)...)

	uploads := make(map[models.DocumentType]models.DocumentUpload, len(sub.Documents))
	var problems []apperrors.DocumentProblem
	for _, doc := range sub.Documents {
		if _, dup := uploads[doc.Type]; dup {
			problems = append(problems, apperrors.DocumentProblem{DocumentType: string(doc.Type), Reason: "submitted more than once"})
			continue
		}
		uploads[doc.Type] = doc
	}
	for _, docType := range s.policies.Required() {
		if _, ok := uploads[docType]; !ok {
			fields = append(fields, fieldError("documents."+string(docType), "required"))
		}
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	ordered := make([]models.DocumentUpload, 0, len(uploads))
	for _, docType := range models.DocumentTypes {
		if doc, ok := uploads[docType]; ok {
			ordered = append(ordered, doc)
			problems = append(problems, s.checkDocument(doc)...)
		}
	}
	for _, doc := range sub.Documents {
		if _, known := s.policies[doc.Type]; !known {
			problems = append(problems, apperrors.DocumentProblem{DocumentType: string(doc.Type), Reason: "unknown document type"})
		}
	}
	if len(problems) > 0 {
		return nil, &apperrors.InvalidDocumentError{Problems: problems}
	}

	records, err := s.uploadAll(ctx, reg.ID, ordered)
	if err != nil {
		return nil, err
	}

	step := models.StepDocuments
	completion := models.ProfileCompletionForStep(step)
	patch := models.RegistrationPatch{
		Step:                &step,
		ProfileCompletion:   &completion,
		BankDetails:         &bank,
		RegistrationNumbers: &numbers,
		Documents:           records,
	}
	ok, err := s.store.UpdateIfVersion(ctx, reg.ID, reg.Step, reg.Version, patch)
	if err != nil || !ok {
		s.discardUploads(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("saving documents: %w", err)
		}
		return nil, apperrors.ErrConcurrentModification
	}
	patch.Apply(reg, s.now())

	next, err := s.tokens.IssueRegistrationToken(reg.ID.Hex(), models.StepDocuments)
	if err != nil {
		return nil, err
	}
	return models.NewRegistrationResult(reg, next), nil
}

// SubmitStep3 stores the service catalogue and submits the registration for review
func (s *RegistrationService) SubmitStep3(ctx context.Context, token string, req models.Step3Request) (res *models.RegistrationResult, err error) {
	defer func() { observe(actionStep3, err) }()

	reg, err := s.resolveRegistration(ctx, token, models.StepServices)
	if err != nil {
		return nil, err
	}

	for i := range req.Services {
		req.Services[i] = normalizeService(req.Services[i])
	}
	if err := s.validator.Struct("", req); err != nil {
		return nil, err
	}

	now := s.now()
	step := models.StepServices
	completion := models.ProfileCompletionForStep(step)
	status := models.StatusPendingReview
	patch := models.RegistrationPatch{
		Step:                  &step,
		ProfileCompletion:     &completion,
		RegistrationStatus:    &status,
		Services:              req.Services,
		RecommendationAnswers: req.RecommendationAnswers,
		SubmittedAt:           &now,
	}
	ok, err := s.store.UpdateIfVersion(ctx, reg.ID, reg.Step, reg.Version, patch)
	if err != nil {
		return nil, fmt.Errorf("saving services: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrConcurrentModification
	}
	patch.Apply(reg, now)

	sendBestEffort(ctx, s.notifier, s.emails, templateSubmitted, reg, "")
	s.events.PublishToAdmins(newEvent(models.EventRegistrationSubmitted, reg, "New vendor registration submitted for review"))

	log.Printf("Vendor registration %s submitted for review", reg.ID.Hex())
	return models.NewRegistrationResult(reg, ""), nil
}

// Progress returns the registration a registration token belongs to
func (s *RegistrationService) Progress(ctx context.Context, token string) (*models.RegistrationResult, error) {
	claims, err := s.tokens.Verify(token, PurposeRegistration)
	if err != nil {
		return nil, apperrors.ErrSessionExpired
	}
	reg, err := s.loadForToken(ctx, claims)
	if err != nil {
		return nil, err
	}
	return models.NewRegistrationResult(reg, ""), nil
}

// resolveRegistration checks that token may submit step. The record must sit exactly
// one step behind; a record that already moved past it means the token is stale.
func (s *RegistrationService) resolveRegistration(ctx context.Context, token string, step int) (*models.VendorRegistration, error) {
	claims, err := s.tokens.Verify(token, PurposeRegistration)
	if err != nil {
		return nil, apperrors.ErrSessionExpired
	}
	if claims.Stage > step-1 {
		return nil, apperrors.ErrSessionExpired
	}
	reg, err := s.loadForToken(ctx, claims)
	if err != nil {
		return nil, err
	}
	if reg.Step >= step {
		return nil, apperrors.ErrSessionExpired
	}
	if reg.Step < step-1 {
		return nil, validationError(apperrors.FieldError{
			Field: "step", Rule: "order", Message: fmt.Sprintf("step %d must be completed first", reg.Step+1),
		})
	}
	return reg, nil
}

func (s *RegistrationService) loadForToken(ctx context.Context, claims *TokenClaims) (*models.VendorRegistration, error) {
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperrors.ErrSessionExpired
	}
	reg, err := s.store.FindByID(ctx, id)
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		return nil, apperrors.ErrSessionExpired
	}
	return reg, err
}

// VerifyEmail marks the registration email as verified
func (s *RegistrationService) VerifyEmail(ctx context.Context, token string) (reg *models.VendorRegistration, err error) {
	defer func() { observe(actionVerifyEmail, err) }()

	claims, err := s.tokens.Verify(token, PurposeEmailVerification)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	return applyPatch(ctx, s.store, id, emailVerifyAttempts, s.now, func(r *models.VendorRegistration) (*models.RegistrationPatch, error) {
		if !strings.EqualFold(r.BusinessInfo.Email, claims.Email) {
			return nil, apperrors.ErrTokenInvalid
		}
		if r.EmailVerified {
			return nil, nil
		}
		verified := true
		now := s.now()
		return &models.RegistrationPatch{EmailVerified: &verified, EmailVerifiedAt: &now}, nil
	})
}

// GetRegistration loads a registration for its owner or a reviewer
func (s *RegistrationService) GetRegistration(ctx context.Context, id primitive.ObjectID) (*models.RegistrationResult, error) {
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewRegistrationResult(reg, ""), nil
}

// ResubmitForReview moves a completed registration back to review after reviewers asked for documents
func (s *RegistrationService) ResubmitForReview(ctx context.Context, vendorID primitive.ObjectID) (res *models.RegistrationResult, err error) {
	defer func() { observe(ActionResubmit, err) }()

	reg, err := applyPatch(ctx, s.store, vendorID, 1, s.now, func(r *models.VendorRegistration) (*models.RegistrationPatch, error) {
		if r.Step < models.StepServices {
			return nil, validationError(apperrors.FieldError{
				Field: "step", Rule: "order", Message: "registration must be completed before it can be resubmitted",
			})
		}
		to, err := nextStatus(r.RegistrationStatus, ActionResubmit)
		if err != nil {
			return nil, err
		}
		now := s.now()
		return &models.RegistrationPatch{RegistrationStatus: &to, SubmittedAt: &now}, nil
	})
	if err != nil {
		return nil, err
	}

	sendBestEffort(ctx, s.notifier, s.emails, templateSubmitted, reg, "")
	s.events.PublishToAdmins(newEvent(models.EventRegistrationResubmitted, reg, "Vendor resubmitted registration for review"))
	return models.NewRegistrationResult(reg, ""), nil
}

// ReuploadDocument replaces one document. The new file is stored first, the record entry is
// swapped under CAS with verified reset, and only then is the previous file removed.
func (s *RegistrationService) ReuploadDocument(ctx context.Context, vendorID primitive.ObjectID, doc models.DocumentUpload) (res *models.RegistrationResult, err error) {
	defer func() { observe(actionReupload, err) }()

	reg, err := s.store.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if reg.Step < models.StepDocuments {
		return nil, validationError(apperrors.FieldError{
			Field: "step", Rule: "order", Message: "step 2 must be completed first",
		})
	}
	if !vendorCanReupload(reg.RegistrationStatus) {
		return nil, &apperrors.InvalidTransitionError{From: string(reg.RegistrationStatus), Action: actionReupload}
	}
	if _, known := s.policies[doc.Type]; !known {
		return nil, &apperrors.InvalidDocumentError{Problems: []apperrors.DocumentProblem{
			{DocumentType: string(doc.Type), Reason: "unknown document type"},
		}}
	}
	if problems := s.checkDocument(doc); len(problems) > 0 {
		return nil, &apperrors.InvalidDocumentError{Problems: problems}
	}

	record, err := s.uploadOne(ctx, reg.ID, doc)
	if err != nil {
		return nil, apperrors.External(apperrors.ServiceDocumentStore, err)
	}
	previous, hadPrevious := reg.Documents[doc.Type]

	patch := models.RegistrationPatch{Documents: map[models.DocumentType]models.DocumentRecord{doc.Type: record}}
	ok, err := s.store.UpdateIfVersion(ctx, reg.ID, reg.Step, reg.Version, patch)
	if err != nil || !ok {
		s.discardUploads(ctx, patch.Documents)
		if err != nil {
			return nil, fmt.Errorf("saving document: %w", err)
		}
		return nil, apperrors.ErrConcurrentModification
	}
	patch.Apply(reg, s.now())

	if hadPrevious && previous.FileRef.ID != "" && previous.FileRef.ID != record.FileRef.ID {
		if err := s.documents.Delete(ctx, previous.FileRef.ID); err != nil {
			log.Printf("Failed to delete replaced document %s of registration %s: %v", previous.FileRef.ID, reg.ID.Hex(), err)
		}
	}

	event := newEvent(models.EventDocumentReuploaded, reg, "Vendor uploaded a new "+string(doc.Type))
	event.DocumentType = doc.Type
	s.events.PublishToAdmins(event)
	return models.NewRegistrationResult(reg, ""), nil
}

// checkDocument applies the document policy; it never touches the document store
func (s *RegistrationService) checkDocument(doc models.DocumentUpload) []apperrors.DocumentProblem {
	policy, ok := s.policies[doc.Type]
	if !ok {
		return nil
	}
	var problems []apperrors.DocumentProblem
	add := func(reason string) {
		problems = append(problems, apperrors.DocumentProblem{DocumentType: string(doc.Type), Reason: reason})
	}

	if doc.Size() == 0 {
		add("file is empty")
		return problems
	}
	if !policy.AllowsExtension(doc.FileName) {
		add(fmt.Sprintf("file type %q is not allowed, use one of %s", filepath.Ext(doc.FileName), strings.Join(policy.AllowedExtensions, ", ")))
	} else if !utils.ContentMatchesExtension(doc.FileName, utils.DetectMimeType(doc.Data)) {
		add("file content does not match its extension")
	}
	if doc.Size() > policy.MaxBytes {
		add(fmt.Sprintf("file is %d bytes, the limit is %d bytes", doc.Size(), policy.MaxBytes))
	}
	return problems
}

// uploadAll stores documents in parallel. On any failure the files this call
// already stored are removed before the error is returned.
func (s *RegistrationService) uploadAll(ctx context.Context, regID primitive.ObjectID, docs []models.DocumentUpload) (map[models.DocumentType]models.DocumentRecord, error) {
	var mu sync.Mutex
	records := make(map[models.DocumentType]models.DocumentRecord, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadConcurrency)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			record, err := s.uploadOne(gctx, regID, doc)
			if err != nil {
				return fmt.Errorf("%s: %w", doc.Type, err)
			}
			mu.Lock()
			records[doc.Type] = record
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardUploads(ctx, records)
		return nil, apperrors.External(apperrors.ServiceDocumentStore, err)
	}
	return records, nil
}

func (s *RegistrationService) uploadOne(ctx context.Context, regID primitive.ObjectID, doc models.DocumentUpload) (models.DocumentRecord, error) {
	mimeType := utils.DetectMimeType(doc.Data)
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	name := fmt.Sprintf("%s_%s_%s%s", regID.Hex(), doc.Type, uuid.NewString(), ext)

	started := time.Now()
	ref, err := s.documents.Upload(ctx, models.FileUpload{Name: name, MimeType: mimeType, Data: doc.Data})
	metrics.ObserveUpload(started, err)
	if err != nil {
		return models.DocumentRecord{}, err
	}

	return models.DocumentRecord{
		FileRef:    ref,
		FileName:   utils.CleanFilename(doc.FileName),
		MimeType:   mimeType,
		SizeBytes:  doc.Size(),
		Verified:   false,
		UploadedAt: s.now(),
	}, nil
}

// discardUploads removes files of a failed attempt so retries leave no orphans
func (s *RegistrationService) discardUploads(ctx context.Context, records map[models.DocumentType]models.DocumentRecord) {
	if len(records) == 0 {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	for docType, record := range records {
		if err := s.documents.Delete(cleanupCtx, record.FileRef.ID); err != nil {
			log.Printf("Failed to remove orphaned %s upload %s: %v", docType, record.FileRef.ID, err)
		}
	}
}

// applyPatch loads a registration, derives a patch from it and writes it under CAS.
// A nil patch means there is nothing to change.
func applyPatch(ctx context.Context, store RegistrationStore, id primitive.ObjectID, attempts int, now func() time.Time,
	build func(*models.VendorRegistration) (*models.RegistrationPatch, error)) (*models.VendorRegistration, error) {
	for i := 0; i < attempts; i++ {
		reg, err := store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		patch, err := build(reg)
		if err != nil {
			return nil, err
		}
		if patch == nil {
			return reg, nil
		}
		ok, err := store.UpdateIfVersion(ctx, id, reg.Step, reg.Version, *patch)
		if err != nil {
			return nil, err
		}
		if ok {
			patch.Apply(reg, now())
			return reg, nil
		}
	}
	return nil, apperrors.ErrConcurrentModification
}

func newEvent(eventType string, reg *models.VendorRegistration, message string) models.RegistrationEvent {
	return models.RegistrationEvent{
		Type:           eventType,
		RegistrationID: reg.ID.Hex(),
		BusinessName:   reg.BusinessInfo.BusinessName,
		Status:         reg.RegistrationStatus,
		Message:        message,
		OccurredAt:     time.Now(),
	}
}

func normalizeBusinessInfo(info models.BusinessInfo) models.BusinessInfo {
	info.BusinessName = utils.SanitizeInput(info.BusinessName)
	info.OwnerName = utils.SanitizeInput(info.OwnerName)
	info.Description = utils.SanitizeInput(info.Description)
	info.Website = strings.TrimSpace(info.Website)
	info.BusinessType = strings.ToLower(strings.TrimSpace(info.BusinessType))
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	if phone, err := utils.NormalizePhone(info.Phone); err == nil {
		info.Phone = phone
	}
	if info.AlternatePhone != "" {
		if phone, err := utils.NormalizePhone(info.AlternatePhone); err == nil {
			info.AlternatePhone = phone
		}
	}
	info.Address.Street = utils.SanitizeInput(info.Address.Street)
	info.Address.City = utils.SanitizeInput(info.Address.City)
	info.Address.State = utils.SanitizeInput(info.Address.State)
	info.Address.Pincode = strings.TrimSpace(info.Address.Pincode)
	if info.Address.Country == "" {
		info.Address.Country = "India"
	}

	seen := make(map[models.VendorCategory]bool, len(info.Categories))
	categories := make([]models.VendorCategory, 0, len(info.Categories))
	for _, c := range info.Categories {
		c = models.VendorCategory(strings.TrimSpace(string(c)))
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	info.Categories = categories
	return info
}

func normalizeBankDetails(b models.BankDetails) models.BankDetails {
	b.AccountHolderName = utils.SanitizeInput(b.AccountHolderName)
	b.AccountNumber = strings.ReplaceAll(strings.TrimSpace(b.AccountNumber), " ", "")
	b.IFSCCode = strings.ToUpper(strings.TrimSpace(b.IFSCCode))
	b.BankName = utils.SanitizeInput(b.BankName)
	b.BranchName = utils.SanitizeInput(b.BranchName)
	return b
}

func normalizeRegistrationNumbers(n models.RegistrationNumbers) models.RegistrationNumbers {
	n.PANNumber = strings.ToUpper(strings.TrimSpace(n.PANNumber))
	n.GSTNumber = strings.ToUpper(strings.TrimSpace(n.GSTNumber))
	n.BusinessRegistrationNumber = strings.TrimSpace(n.BusinessRegistrationNumber)
	return n
}

func normalizeService(svc models.ServiceOffering) models.ServiceOffering {
	svc.Title = utils.SanitizeInput(svc.Title)
	svc.Description = utils.SanitizeInput(svc.Description)
	seen := make(map[models.EventType]bool, len(svc.EventTypes))
	eventTypes := make([]models.EventType, 0, len(svc.EventTypes))
	for _, e := range svc.EventTypes {
		if !seen[e] {
			seen[e] = true
			eventTypes = append(eventTypes, e)
		}
	}
	svc.EventTypes = eventTypes
	for i := range svc.Packages {
		svc.Packages[i].Name = utils.SanitizeInput(svc.Packages[i].Name)
		svc.Packages[i].Description = utils.SanitizeInput(svc.Packages[i].Description)
		svc.Packages[i].Inclusions = utils.SanitizeStringArray(svc.Packages[i].Inclusions)
	}
	return svc
}
