package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/metrics"
	"github.com/evea/evea_backend/models"
)

const passwordResetAttempts = 3

// AuthDeps wires the collaborators of AuthService
type AuthDeps struct {
	Registrations   RegistrationStore
	Admins          AdminStore
	Attempts        LoginAttemptStore
	Revocations     TokenRevocationStore
	Tokens          *TokenService
	Identity        IdentityVerifier
	Notifier        Notifier
	Emails          *EmailComposer
	MaxFailedLogins int
	LockoutDuration time.Duration
}

// AuthService issues login sessions for vendors and reviewers and keeps
// the failed-login counters that lock an account out.
type AuthService struct {
	registrations   RegistrationStore
	admins          AdminStore
	attempts        LoginAttemptStore
	revocations     TokenRevocationStore
	tokens          *TokenService
	identity        IdentityVerifier
	notifier        Notifier
	emails          *EmailComposer
	validator       *Validator
	maxFailedLogins int
	lockout         time.Duration
	dummyHash       []byte
	now             func() time.Time
}

func NewAuthService(deps AuthDeps) *AuthService {
	s := &AuthService{
		registrations:   deps.Registrations,
		admins:          deps.Admins,
		attempts:        deps.Attempts,
		revocations:     deps.Revocations,
		tokens:          deps.Tokens,
		identity:        deps.Identity,
		notifier:        deps.Notifier,
		emails:          deps.Emails,
		validator:       NewValidator(),
		maxFailedLogins: deps.MaxFailedLogins,
		lockout:         deps.LockoutDuration,
		now:             time.Now,
	}
	if s.maxFailedLogins < 1 {
		s.maxFailedLogins = 5
	}
	if s.lockout <= 0 {
		s.lockout = 30 * time.Minute
	}
	if s.emails == nil {
		s.emails = NewEmailComposer("")
	}
	// compared against when the account does not exist so timing does not leak it
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("evea-unknown-account"), passwordHashCost)
	return s
}

// Login authenticates an email and password against reviewers first, then vendors
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct("", req); err != nil {
		return nil, err
	}

	until, err := s.attempts.LockedUntil(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("checking lockout: %w", err)
	}
	if !until.IsZero() && until.After(s.now()) {
		metrics.Login("locked")
		return nil, &apperrors.AccountLockedError{Until: until}
	}

	account, err := s.findAccountByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrRecordNotFound) {
		return nil, err
	}
	if account == nil || account.AuthMethod != models.AuthMethodLocal || account.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, s.loginFailed(ctx, req.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.loginFailed(ctx, req.Email)
	}

	if err := s.attempts.Reset(ctx, req.Email); err != nil {
		log.Printf("Failed to reset login attempts for %s: %v", req.Email, err)
	}
	metrics.Login("success")
	return s.session(account)
}

// loginFailed counts a failure and locks the account when the limit is reached
func (s *AuthService) loginFailed(ctx context.Context, email string) error {
	count, err := s.attempts.RecordFailure(ctx, email)
	if err != nil {
		return fmt.Errorf("recording failed login: %w", err)
	}
	if count >= int64(s.maxFailedLogins) {
		until := s.now().Add(s.lockout)
		if err := s.attempts.Lock(ctx, email, until); err != nil {
			return fmt.Errorf("locking account: %w", err)
		}
		log.Printf("Account %s locked until %s after %d failed logins", email, until.Format(time.RFC3339), count)
		metrics.Login("locked")
		return &apperrors.AccountLockedError{Until: until}
	}
	metrics.Login("failure")
	return apperrors.ErrInvalidCredentials
}

// GoogleLogin signs in a vendor that registered with Google
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*models.LoginResult, error) {
	if s.identity == nil {
		return nil, apperrors.External(apperrors.ServiceIdentity, errors.New("google sign-in is not configured"))
	}
	identity, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenInvalid) || errors.Is(err, apperrors.ErrTokenExpired) {
			metrics.Login("failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.External(apperrors.ServiceIdentity, err)
	}

	reg, err := s.registrations.FindByEmail(ctx, strings.ToLower(identity.Email))
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		metrics.Login("failure")
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	account := models.AccountFromRegistration(reg)
	if account.AuthMethod != models.AuthMethodGoogle || account.GoogleSubject != identity.Subject {
		metrics.Login("failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.Login("success")
	return s.session(account)
}

// Refresh rotates a session. The presented refresh token is revoked for the rest of its lifetime.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResult, error) {
	claims, err := s.tokens.Verify(refreshToken, PurposeRefresh)
	if err != nil {
		return nil, err
	}
	// the claim is what makes each refresh token single-use
	won, err := s.revocations.Claim(ctx, claims.Id, s.tokens.remaining(claims))
	if err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}
	if !won {
		return nil, apperrors.ErrTokenInvalid
	}

	account, err := s.accountByID(ctx, claims.Role, claims.Subject)
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		return nil, apperrors.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return s.session(account)
}

// Logout revokes a refresh token. Expired tokens need no revocation.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Verify(refreshToken, PurposeRefresh)
	if errors.Is(err, apperrors.ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.revocations.Revoke(ctx, claims.Id, s.tokens.remaining(claims))
}

// ForgotPassword emails a reset link when the account exists. It reports nothing
// about the account so the endpoint cannot be used to discover emails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.findAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrRecordNotFound) {
			log.Printf("Password reset lookup for %s failed: %v", email, err)
		}
		return
	}
	if account.PasswordHash == "" {
		return
	}

	token, err := s.tokens.IssuePasswordReset(account, passwordFingerprint(account.PasswordHash))
	if err != nil {
		log.Printf("Failed to issue password reset token: %v", err)
		return
	}
	msg, err := s.emails.PasswordReset(account.Email, token)
	if err == nil {
		err = s.notifier.Send(ctx, msg)
	}
	metrics.Email(templatePasswordReset, err)
	if err != nil {
		log.Printf("Failed to send password reset email to %s: %v", email, err)
	}
}

// ResetPassword sets a new password. The token only works while the password it was issued for is unchanged.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct("", req); err != nil {
		return err
	}
	claims, err := s.tokens.Verify(req.Token, PurposePasswordReset)
	if err != nil {
		return err
	}
	account, err := s.accountByID(ctx, claims.Role, claims.Subject)
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		return apperrors.ErrTokenInvalid
	}
	if err != nil {
		return err
	}
	if passwordFingerprint(account.PasswordHash) != claims.Fingerprint {
		return apperrors.ErrTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	hash := string(hashed)

	if account.Role == models.RoleAdmin {
		err = s.admins.UpdatePassword(ctx, account.ID, hash)
	} else {
		_, err = applyPatch(ctx, s.registrations, account.ID, passwordResetAttempts, s.now, func(r *models.VendorRegistration) (*models.RegistrationPatch, error) {
			if passwordFingerprint(r.Credentials.PasswordHash) != claims.Fingerprint {
				return nil, apperrors.ErrTokenInvalid
			}
			return &models.RegistrationPatch{PasswordHash: &hash}, nil
		})
	}
	if err != nil {
		return err
	}

	if err := s.attempts.Reset(ctx, account.Email); err != nil {
		log.Printf("Failed to reset login attempts for %s: %v", account.Email, err)
	}
	log.Printf("Password reset for %s account %s", account.Role, account.ID.Hex())
	return nil
}

// BootstrapAdmin creates the configured reviewer account when it does not exist yet
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Printf("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	if _, err := s.admins.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	now := s.now()
	admin := &models.AdminAccount{
		Email:        email,
		FullName:     name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrDuplicateEmail) {
		return fmt.Errorf("creating admin: %w", err)
	}
	log.Printf("Admin account %s created", email)
	return nil
}

func (s *AuthService) session(account *models.Account) (*models.LoginResult, error) {
	pair, err := s.tokens.IssueSession(account)
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{
		Session: pair,
		Role:    account.Role,
		UserID:  account.ID.Hex(),
		Email:   account.Email,
	}, nil
}

func (s *AuthService) findAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return models.AccountFromAdmin(admin), nil
	}
	if !errors.Is(err, apperrors.ErrRecordNotFound) {
		return nil, err
	}
	reg, err := s.registrations.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return models.AccountFromRegistration(reg), nil
}

func (s *AuthService) accountByID(ctx context.Context, role, subject string) (*models.Account, error) {
	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil, apperrors.ErrRecordNotFound
	}
	if role == models.RoleAdmin {
		admin, err := s.admins.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return models.AccountFromAdmin(admin), nil
	}
	reg, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.AccountFromRegistration(reg), nil
}

// passwordFingerprint identifies a password hash without exposing it
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:])[:16]
}
