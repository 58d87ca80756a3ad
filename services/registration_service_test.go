package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/testutil"
)

type RegistrationServiceSuite struct {
	suite.Suite
	h *harness
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	s.h = newHarness()
}

func (s *RegistrationServiceSuite) TestStep1CreatesRegistration() {
	res, err := s.h.registration.SubmitStep1(s.h.ctx, testutil.Step1Request("Asha@Example.com"))
	s.Require().NoError(err)

	reg := res.Registration
	s.Equal(models.StepBusinessInfo, reg.Step)
	s.Equal(models.StatusPendingDocuments, reg.RegistrationStatus)
	s.Equal(25, reg.ProfileCompletion)
	s.Equal(int64(0), reg.Version)
	s.Equal("asha@example.com", reg.BusinessInfo.Email)
	s.Equal("9876543210", reg.BusinessInfo.Phone)
	s.Equal(2, res.NextStep)
	s.Equal("Documents Pending", res.Status.Label)
	s.NotEmpty(res.Token)
	s.False(reg.EmailVerified)

	stored, err := s.h.store.FindByID(s.h.ctx, reg.ID)
	s.Require().NoError(err)
	s.NotEqual(testutil.TestPassword, stored.Credentials.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.Credentials.PasswordHash), []byte(testutil.TestPassword)))

	sent := s.h.notifier.Sent()
	s.Require().Len(sent, 1)
	s.Equal("asha@example.com", sent[0].To)
	s.Contains(sent[0].HTML, "/vendor/verify-email?token=")

	claims, err := s.h.tokens.Verify(res.Token, PurposeRegistration)
	s.Require().NoError(err)
	s.Equal(reg.ID.Hex(), claims.Subject)
	s.Equal(models.StepBusinessInfo, claims.Stage)
}

func (s *RegistrationServiceSuite) TestStep1ReportsEveryInvalidField() {
	req := testutil.Step1Request("not-an-email")
	req.BusinessInfo.Phone = "12345"
	req.BusinessInfo.Categories = nil
	req.BusinessInfo.Address.Pincode = "01234"
	req.Credentials.Password = "short"
	req.Credentials.ConfirmPassword = "short"

	_, err := s.h.registration.SubmitStep1(s.h.ctx, req)

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	for _, field := range []string{
		"businessInfo.email",
		"businessInfo.phone",
		"businessInfo.categories",
		"businessInfo.address.pincode",
		"credentials.password",
	} {
		s.True(verr.Has(field), "expected failure for %s, got %v", field, verr.Fields)
	}
	s.Equal(0, s.h.store.Count())
	s.Empty(s.h.notifier.Sent())
}

func (s *RegistrationServiceSuite) TestStep1PasswordConfirmationMustMatch() {
	req := testutil.Step1Request("asha@example.com")
	req.Credentials.ConfirmPassword = "different-password"

	_, err := s.h.registration.SubmitStep1(s.h.ctx, req)

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("credentials.confirmPassword"))
}

func (s *RegistrationServiceSuite) TestStep1PhoneNormalisation() {
	for _, phone := range []string{"098765 43210", "+91-98765-43210", "(987) 654-3210"} {
		h := newHarness()
		req := testutil.Step1Request("asha@example.com")
		req.BusinessInfo.Phone = phone
		res, err := h.registration.SubmitStep1(h.ctx, req)
		s.Require().NoError(err, phone)
		s.Equal("9876543210", res.Registration.BusinessInfo.Phone)
	}
}

func (s *RegistrationServiceSuite) TestStep1DuplicateEmail() {
	s.h.step1(s.T(), "asha@example.com")

	_, err := s.h.registration.SubmitStep1(s.h.ctx, testutil.Step1Request("ASHA@example.com"))
	s.ErrorIs(err, apperrors.ErrDuplicateEmail)
	s.Equal(1, s.h.store.Count())
}

func (s *RegistrationServiceSuite) TestStep1EmailFailureRemovesRecord() {
	s.h.notifier.Fail = true

	_, err := s.h.registration.SubmitStep1(s.h.ctx, testutil.Step1Request("asha@example.com"))

	var xerr *apperrors.ExternalServiceError
	s.Require().ErrorAs(err, &xerr)
	s.Equal(apperrors.ServiceEmail, xerr.Which)
	s.Equal(0, s.h.store.Count())

	// the email is free again once the mail server recovers
	s.h.notifier.Fail = false
	_, err = s.h.registration.SubmitStep1(s.h.ctx, testutil.Step1Request("asha@example.com"))
	s.NoError(err)
}

func (s *RegistrationServiceSuite) TestStep1GoogleSignUp() {
	s.h.identity.Identities["google-token"] = &models.GoogleIdentity{
		Subject: "google-sub-1", Email: "asha@example.com", EmailVerified: true,
	}
	req := testutil.Step1Request("asha@example.com")
	req.Credentials = models.Credentials{AuthMethod: models.AuthMethodGoogle, GoogleIDToken: "google-token"}

	res, err := s.h.registration.SubmitStep1(s.h.ctx, req)
	s.Require().NoError(err)
	s.True(res.Registration.EmailVerified)
	s.Empty(s.h.notifier.Sent())

	stored, err := s.h.store.FindByID(s.h.ctx, res.Registration.ID)
	s.Require().NoError(err)
	s.Equal("google-sub-1", stored.Credentials.GoogleSubject)
	s.Empty(stored.Credentials.PasswordHash)
}

func (s *RegistrationServiceSuite) TestStep1GoogleFailures() {
	req := testutil.Step1Request("asha@example.com")
	req.Credentials = models.Credentials{AuthMethod: models.AuthMethodGoogle, GoogleIDToken: "unknown"}

	_, err := s.h.registration.SubmitStep1(s.h.ctx, req)
	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("credentials.googleIdToken"))

	s.h.identity.Identities["other"] = &models.GoogleIdentity{Subject: "x", Email: "someone@else.com", EmailVerified: true}
	req.Credentials.GoogleIDToken = "other"
	_, err = s.h.registration.SubmitStep1(s.h.ctx, req)
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("businessInfo.email"))

	s.h.identity.Err = errors.New("jwks unreachable")
	_, err = s.h.registration.SubmitStep1(s.h.ctx, req)
	var xerr *apperrors.ExternalServiceError
	s.Require().ErrorAs(err, &xerr)
	s.Equal(apperrors.ServiceIdentity, xerr.Which)

	s.Equal(0, s.h.store.Count())
}

func (s *RegistrationServiceSuite) TestStep2StoresDocuments() {
	first := s.h.step1(s.T(), "asha@example.com")

	res, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, testutil.Step2Submission())
	s.Require().NoError(err)

	reg := res.Registration
	s.Equal(models.StepDocuments, reg.Step)
	s.Equal(75, reg.ProfileCompletion)
	s.Equal(models.StatusPendingDocuments, reg.RegistrationStatus)
	s.Equal(3, res.NextStep)
	s.Len(reg.Documents, 5)
	for docType, record := range reg.Documents {
		s.False(record.Verified, docType)
		s.True(s.h.docs.Has(record.FileRef.ID), docType)
	}
	s.Equal("image/png", reg.Documents[models.DocPANCard].MimeType)
	s.Equal("ABCDE1234F", reg.RegistrationNumbers.PANNumber)
	s.Equal("HDFC0001234", reg.BankDetails.IFSCCode)
	s.Equal(5, s.h.docs.Count())

	stored, err := s.h.store.FindByID(s.h.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Version)
	s.Len(stored.Documents, 5)

	claims, err := s.h.tokens.Verify(res.Token, PurposeRegistration)
	s.Require().NoError(err)
	s.Equal(models.StepDocuments, claims.Stage)
}

func (s *RegistrationServiceSuite) TestStep2MissingRequiredDocument() {
	first := s.h.step1(s.T(), "asha@example.com")
	sub := testutil.Step2Submission()
	var docs []models.DocumentUpload
	for _, d := range sub.Documents {
		if d.Type != models.DocPANCard {
			docs = append(docs, d)
		}
	}
	sub.Documents = docs
	sub.RegistrationNumbers.PANNumber = "ABCDE12345"
	sub.BankDetails.IFSCCode = "HDFC1001234"

	_, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, sub)

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("documents.panCard"))
	s.True(verr.Has("registrationNumbers.panNumber"))
	s.True(verr.Has("bankDetails.ifscCode"))
	s.Equal(0, s.h.docs.UploadCalls())
}

func (s *RegistrationServiceSuite) TestStep2OptionalDocumentMayBeOmitted() {
	first := s.h.step1(s.T(), "asha@example.com")
	sub := testutil.Step2Submission()
	sub.Documents = sub.Documents[:1]
	sub.Documents = append(sub.Documents, testutil.Step2Submission().Documents[2:]...)

	res, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, sub)
	s.Require().NoError(err)
	s.Len(res.Registration.Documents, 4)
	s.NotContains(res.Registration.Documents, models.DocGSTCertificate)
}

func (s *RegistrationServiceSuite) TestStep2RejectsDocumentsBeforeUpload() {
	first := s.h.step1(s.T(), "asha@example.com")
	sub := testutil.Step2Submission()
	for i := range sub.Documents {
		switch sub.Documents[i].Type {
		case models.DocPANCard:
			sub.Documents[i].Data = testutil.PNGBytes(3 * 1024 * 1024)
		case models.DocBankStatement:
			sub.Documents[i].FileName = "statement.png"
			sub.Documents[i].Data = testutil.PNGBytes(1024)
		case models.DocIdentityProof:
			sub.Documents[i].FileName = "aadhaar.pdf"
		}
	}

	_, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, sub)

	var derr *apperrors.InvalidDocumentError
	s.Require().ErrorAs(err, &derr)
	s.Len(derr.Problems, 3)
	s.Equal(string(models.DocPANCard), derr.Problems[0].DocumentType)
	s.Equal(string(models.DocBankStatement), derr.Problems[1].DocumentType)
	s.Equal(string(models.DocIdentityProof), derr.Problems[2].DocumentType)
	s.Contains(derr.Problems[2].Reason, "does not match")
	s.Equal(0, s.h.docs.UploadCalls())

	stored, err := s.h.store.FindByID(s.h.ctx, first.Registration.ID)
	s.Require().NoError(err)
	s.Equal(models.StepBusinessInfo, stored.Step)
}

func (s *RegistrationServiceSuite) TestStep2UploadFailureLeavesNoFiles() {
	first := s.h.step1(s.T(), "asha@example.com")
	s.h.docs.FailOnUpload = 3

	_, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, testutil.Step2Submission())

	var xerr *apperrors.ExternalServiceError
	s.Require().ErrorAs(err, &xerr)
	s.Equal(apperrors.ServiceDocumentStore, xerr.Which)
	s.Equal(0, s.h.docs.Count())

	stored, err := s.h.store.FindByID(s.h.ctx, first.Registration.ID)
	s.Require().NoError(err)
	s.Equal(models.StepBusinessInfo, stored.Step)
	s.Empty(stored.Documents)

	// the same token can retry
	res, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, testutil.Step2Submission())
	s.Require().NoError(err)
	s.Equal(5, s.h.docs.Count())
	s.Len(res.Registration.Documents, 5)
}

func (s *RegistrationServiceSuite) TestStep2TokenProblems() {
	first := s.h.step1(s.T(), "asha@example.com")

	_, err := s.h.registration.SubmitStep2(s.h.ctx, "garbage", testutil.Step2Submission())
	s.ErrorIs(err, apperrors.ErrSessionExpired)

	s.h.tokens.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expired, err := s.h.tokens.IssueRegistrationToken(first.Registration.ID.Hex(), models.StepBusinessInfo)
	s.Require().NoError(err)
	s.h.tokens.now = time.Now
	_, err = s.h.registration.SubmitStep2(s.h.ctx, expired, testutil.Step2Submission())
	s.ErrorIs(err, apperrors.ErrSessionExpired)

	orphan, err := s.h.tokens.IssueRegistrationToken(primitive.NewObjectID().Hex(), models.StepBusinessInfo)
	s.Require().NoError(err)
	_, err = s.h.registration.SubmitStep2(s.h.ctx, orphan, testutil.Step2Submission())
	s.ErrorIs(err, apperrors.ErrSessionExpired)

	access, err := s.h.tokens.IssueSession(models.AccountFromRegistration(first.Registration))
	s.Require().NoError(err)
	_, err = s.h.registration.SubmitStep2(s.h.ctx, access.AccessToken, testutil.Step2Submission())
	s.ErrorIs(err, apperrors.ErrSessionExpired)

	s.Equal(0, s.h.docs.UploadCalls())
}

func (s *RegistrationServiceSuite) TestStep2ReplayIsSessionExpired() {
	first := s.h.step1(s.T(), "asha@example.com")
	_, err := s.h.registration.SubmitStep2(s.h.ctx, first.Token, testutil.Step2Submission())
	s.Require().NoError(err)

	_, err = s.h.registration.SubmitStep2(s.h.ctx, first.Token, testutil.Step2Submission())
	s.ErrorIs(err, apperrors.ErrSessionExpired)
	s.Equal(5, s.h.docs.Count())
}

func (s *RegistrationServiceSuite) TestStep3BeforeStep2() {
	first := s.h.step1(s.T(), "asha@example.com")

	_, err := s.h.registration.SubmitStep3(s.h.ctx, first.Token, testutil.Step3Request())

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("step"))
}

func (s *RegistrationServiceSuite) TestStep3SubmitsForReview() {
	second := s.h.step2(s.T(), "asha@example.com")

	res, err := s.h.registration.SubmitStep3(s.h.ctx, second.Token, testutil.Step3Request())
	s.Require().NoError(err)

	reg := res.Registration
	s.Equal(models.StepServices, reg.Step)
	s.Equal(100, reg.ProfileCompletion)
	s.Equal(models.StatusPendingReview, reg.RegistrationStatus)
	s.NotNil(reg.SubmittedAt)
	s.Len(reg.Services, 1)
	s.Zero(res.NextStep)
	s.Empty(res.Token)

	events := s.h.events.AdminEvents()
	s.Require().Len(events, 1)
	s.Equal(models.EventRegistrationSubmitted, events[0].Type)
	s.Equal(reg.ID.Hex(), events[0].RegistrationID)

	last, ok := s.h.notifier.Last()
	s.Require().True(ok)
	s.Contains(last.Subject, "submitted")

	_, err = s.h.registration.SubmitStep3(s.h.ctx, second.Token, testutil.Step3Request())
	s.ErrorIs(err, apperrors.ErrSessionExpired)
}

func (s *RegistrationServiceSuite) TestStep3SubmittedEmailIsBestEffort() {
	second := s.h.step2(s.T(), "asha@example.com")
	s.h.notifier.Fail = true

	res, err := s.h.registration.SubmitStep3(s.h.ctx, second.Token, testutil.Step3Request())
	s.Require().NoError(err)
	s.Equal(models.StatusPendingReview, res.Registration.RegistrationStatus)
}

func (s *RegistrationServiceSuite) TestStep3ValidatesServices() {
	second := s.h.step2(s.T(), "asha@example.com")
	req := testutil.Step3Request()
	req.Services[0].Category = "astrology"
	req.Services[0].EventTypes = []models.EventType{"funeral"}
	req.Services[0].GuestCapacity = &models.GuestCapacity{Min: 500, Max: 50}
	req.Services[0].Packages = []models.Package{{Name: "Free", Price: 0}}

	_, err := s.h.registration.SubmitStep3(s.h.ctx, second.Token, req)

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("services[0].category"), verr.Fields)
	s.True(verr.Has("services[0].eventTypes[0]"), verr.Fields)
	s.True(verr.Has("services[0].guestCapacity.min"), verr.Fields)
	s.True(verr.Has("services[0].packages[0].price"), verr.Fields)

	_, err = s.h.registration.SubmitStep3(s.h.ctx, second.Token, models.Step3Request{})
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("services"))
}

func (s *RegistrationServiceSuite) TestProgress() {
	first := s.h.step1(s.T(), "asha@example.com")

	res, err := s.h.registration.Progress(s.h.ctx, first.Token)
	s.Require().NoError(err)
	s.Equal(first.Registration.ID, res.Registration.ID)
	s.Equal(2, res.NextStep)

	_, err = s.h.registration.Progress(s.h.ctx, "")
	s.ErrorIs(err, apperrors.ErrSessionExpired)
}

func (s *RegistrationServiceSuite) TestVerifyEmail() {
	first := s.h.step1(s.T(), "asha@example.com")
	token, err := s.h.tokens.IssueEmailVerification(first.Registration.ID.Hex(), "asha@example.com")
	s.Require().NoError(err)

	reg, err := s.h.registration.VerifyEmail(s.h.ctx, token)
	s.Require().NoError(err)
	s.True(reg.EmailVerified)
	s.NotNil(reg.EmailVerifiedAt)

	again, err := s.h.registration.VerifyEmail(s.h.ctx, token)
	s.Require().NoError(err)
	s.Equal(reg.Version, again.Version)

	wrong, err := s.h.tokens.IssueEmailVerification(first.Registration.ID.Hex(), "other@example.com")
	s.Require().NoError(err)
	_, err = s.h.registration.VerifyEmail(s.h.ctx, wrong)
	s.ErrorIs(err, apperrors.ErrTokenInvalid)

	_, err = s.h.registration.VerifyEmail(s.h.ctx, first.Token)
	s.ErrorIs(err, apperrors.ErrTokenInvalid)
}

func (s *RegistrationServiceSuite) TestReuploadDocumentResetsVerification() {
	adminID := primitive.NewObjectID()
	reg := s.h.submitted(s.T(), "asha@example.com")
	_, err := s.h.review.VerifyDocument(s.h.ctx, adminID, reg.ID, models.DocPANCard)
	s.Require().NoError(err)
	_, err = s.h.review.VerifyDocument(s.h.ctx, adminID, reg.ID, models.DocBankStatement)
	s.Require().NoError(err)
	oldFile := reg.Documents[models.DocPANCard].FileRef.ID

	res, err := s.h.registration.ReuploadDocument(s.h.ctx, reg.ID, models.DocumentUpload{
		Type: models.DocPANCard, FileName: "pan-new.jpg", Data: testutil.JPEGBytes(512),
	})
	s.Require().NoError(err)

	updated := res.Registration
	pan := updated.Documents[models.DocPANCard]
	s.False(pan.Verified)
	s.Nil(pan.VerifiedBy)
	s.Equal("image/jpeg", pan.MimeType)
	s.NotEqual(oldFile, pan.FileRef.ID)
	s.True(s.h.docs.Has(pan.FileRef.ID))
	s.False(s.h.docs.Has(oldFile))
	s.True(updated.Documents[models.DocBankStatement].Verified)
	s.Equal(5, s.h.docs.Count())

	events := s.h.events.AdminEvents()
	s.Equal(models.EventDocumentReuploaded, events[len(events)-1].Type)
	s.Equal(models.DocPANCard, events[len(events)-1].DocumentType)
}

func (s *RegistrationServiceSuite) TestReuploadDocumentGuards() {
	first := s.h.step1(s.T(), "early@example.com")
	_, err := s.h.registration.ReuploadDocument(s.h.ctx, first.Registration.ID, models.DocumentUpload{
		Type: models.DocPANCard, FileName: "pan.png", Data: testutil.PNGBytes(10),
	})
	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.True(verr.Has("step"))

	reg := s.h.submitted(s.T(), "asha@example.com")
	_, err = s.h.registration.ReuploadDocument(s.h.ctx, reg.ID, models.DocumentUpload{
		Type: models.DocBankStatement, FileName: "statement.jpg", Data: testutil.JPEGBytes(10),
	})
	var derr *apperrors.InvalidDocumentError
	s.Require().ErrorAs(err, &derr)

	adminID := primitive.NewObjectID()
	s.h.verifyAll(s.T(), reg, adminID)
	_, err = s.h.review.Approve(s.h.ctx, adminID, reg.ID, "")
	s.Require().NoError(err)

	uploads := s.h.docs.UploadCalls()
	_, err = s.h.registration.ReuploadDocument(s.h.ctx, reg.ID, models.DocumentUpload{
		Type: models.DocPANCard, FileName: "pan.png", Data: testutil.PNGBytes(10),
	})
	var terr *apperrors.InvalidTransitionError
	s.Require().ErrorAs(err, &terr)
	s.Equal(string(models.StatusApproved), terr.From)
	s.Equal(uploads, s.h.docs.UploadCalls())
}

func (s *RegistrationServiceSuite) TestResubmitForReview() {
	adminID := primitive.NewObjectID()
	reg := s.h.submitted(s.T(), "asha@example.com")

	_, err := s.h.registration.ResubmitForReview(s.h.ctx, reg.ID)
	var terr *apperrors.InvalidTransitionError
	s.Require().ErrorAs(err, &terr)

	_, err = s.h.review.RequestMoreDocuments(s.h.ctx, adminID, reg.ID, "Please upload a clearer PAN card")
	s.Require().NoError(err)

	res, err := s.h.registration.ResubmitForReview(s.h.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingReview, res.Registration.RegistrationStatus)

	events := s.h.events.AdminEvents()
	s.Equal(models.EventRegistrationResubmitted, events[len(events)-1].Type)
}

// barrierStore holds every FindByID caller until all parties have read the record,
// so concurrent submissions observe the same version.
type barrierStore struct {
	RegistrationStore
	arrived sync.WaitGroup
}

func (b *barrierStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorRegistration, error) {
	reg, err := b.RegistrationStore.FindByID(ctx, id)
	b.arrived.Done()
	b.arrived.Wait()
	return reg, err
}

func TestConcurrentStep2HasOneWinner(t *testing.T) {
	h := newHarness()
	first := h.step1(t, "asha@example.com")

	barrier := &barrierStore{RegistrationStore: h.store}
	barrier.arrived.Add(2)
	svc := NewRegistrationService(RegistrationDeps{
		Store:     barrier,
		Documents: h.docs,
		Notifier:  h.notifier,
		Tokens:    h.tokens,
		Events:    h.events,
	})

	var wg sync.WaitGroup
	results := make([]*models.RegistrationResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.SubmitStep2(h.ctx, first.Token, testutil.Step2Submission())
		}(i)
	}
	wg.Wait()

	var winners, conflicts int
	var winner *models.RegistrationResult
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			winner = results[i]
		case errors.Is(err, apperrors.ErrConcurrentModification):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, winners)
	require.Equal(t, 1, conflicts)

	// only the winner's files survive
	assert.Equal(t, 5, h.docs.Count())
	for _, record := range winner.Registration.Documents {
		assert.True(t, h.docs.Has(record.FileRef.ID))
	}
	stored, err := h.store.FindByID(h.ctx, first.Registration.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	for docType, record := range stored.Documents {
		assert.Equal(t, winner.Registration.Documents[docType].FileRef.ID, record.FileRef.ID)
	}
}

func TestNormalizeBusinessInfoDedupesCategories(t *testing.T) {
	info := testutil.Step1Request("  Asha@Example.COM ").BusinessInfo
	info.Categories = []models.VendorCategory{"photography", " photography", "catering"}
	info.BusinessName = "<script>alert(1)</script>Lens"

	got := normalizeBusinessInfo(info)

	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, []models.VendorCategory{models.CategoryPhotography, models.CategoryCatering}, got.Categories)
	assert.False(t, strings.Contains(got.BusinessName, "<script>"))
	assert.Equal(t, "India", got.Address.Country)
}
