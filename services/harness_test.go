package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/repositories"
	"github.com/evea/evea_backend/testutil"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestMain(m *testing.M) {
	passwordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		Secret:          testSecret,
		RegistrationTTL: 2 * time.Hour,
		AccessTTL:       24 * time.Hour,
		RefreshTTL:      30 * 24 * time.Hour,
		EmailTTL:        24 * time.Hour,
		ResetTTL:        30 * time.Minute,
	})
}

// harness wires the services over in-memory stores and fakes
type harness struct {
	ctx          context.Context
	store        *repositories.MemoryRegistrationRepository
	admins       *repositories.MemoryAdminRepository
	attempts     *repositories.MemoryLoginAttemptStore
	docs         *testutil.FakeDocumentStore
	notifier     *testutil.FakeNotifier
	events       *testutil.FakeEventPublisher
	identity     *testutil.FakeIdentityVerifier
	tokens       *TokenService
	registration *RegistrationService
	review       *ReviewService
	auth         *AuthService
	clock        time.Time
}

func newHarness() *harness {
	h := &harness{
		ctx:      context.Background(),
		store:    repositories.NewMemoryRegistrationRepository(),
		admins:   repositories.NewMemoryAdminRepository(),
		docs:     testutil.NewFakeDocumentStore(),
		notifier: &testutil.FakeNotifier{},
		events:   testutil.NewFakeEventPublisher(),
		identity: &testutil.FakeIdentityVerifier{
			Identities: map[string]*models.GoogleIdentity{},
			InvalidErr: apperrors.ErrTokenInvalid,
		},
		tokens: newTestTokenService(),
		clock:  time.Now(),
	}
	h.attempts = repositories.NewMemoryLoginAttemptStoreWithClock(h.now)

	emails := NewEmailComposer("https://evea.test")
	h.registration = NewRegistrationService(RegistrationDeps{
		Store:             h.store,
		Documents:         h.docs,
		Notifier:          h.notifier,
		Tokens:            h.tokens,
		Identity:          h.identity,
		Events:            h.events,
		Emails:            emails,
		UploadConcurrency: 2,
	})
	h.review = NewReviewService(h.store, h.notifier, emails, h.events, nil)
	h.auth = NewAuthService(AuthDeps{
		Registrations:   h.store,
		Admins:          h.admins,
		Attempts:        h.attempts,
		Revocations:     repositories.NewMemoryTokenRevocationStore(),
		Tokens:          h.tokens,
		Identity:        h.identity,
		Notifier:        h.notifier,
		Emails:          emails,
		MaxFailedLogins: 5,
		LockoutDuration: 30 * time.Minute,
	})
	h.auth.now = h.now
	return h
}

func (h *harness) now() time.Time {
	return h.clock
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *harness) step1(t *testing.T, email string) *models.RegistrationResult {
	t.Helper()
	res, err := h.registration.SubmitStep1(h.ctx, testutil.Step1Request(email))
	require.NoError(t, err)
	return res
}

func (h *harness) step2(t *testing.T, email string) *models.RegistrationResult {
	t.Helper()
	first := h.step1(t, email)
	res, err := h.registration.SubmitStep2(h.ctx, first.Token, testutil.Step2Submission())
	require.NoError(t, err)
	return res
}

// submitted walks a registration through all three steps
func (h *harness) submitted(t *testing.T, email string) *models.VendorRegistration {
	t.Helper()
	second := h.step2(t, email)
	res, err := h.registration.SubmitStep3(h.ctx, second.Token, testutil.Step3Request())
	require.NoError(t, err)
	return res.Registration
}

// verifyAll verifies every uploaded document of a registration
func (h *harness) verifyAll(t *testing.T, reg *models.VendorRegistration, adminID primitive.ObjectID) {
	t.Helper()
	for _, docType := range models.DocumentTypes {
		if _, ok := reg.Documents[docType]; !ok {
			continue
		}
		_, err := h.review.VerifyDocument(h.ctx, adminID, reg.ID, docType)
		require.NoError(t, err)
	}
}
