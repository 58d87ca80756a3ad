package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

// Token purposes. A token signed for one purpose is rejected everywhere else.
const (
	PurposeRegistration      = "registration"
	PurposeAccess            = "access"
	PurposeRefresh           = "refresh"
	PurposeEmailVerification = "email_verification"
	PurposePasswordReset     = "password_reset"
)

const tokenIssuer = "evea"

// TokenClaims for every token the service issues.
// Subject is the registration id for vendors and the admin id for reviewers.
type TokenClaims struct {
	Purpose     string `json:"purpose"`
	Role        string `json:"role,omitempty"`
	Email       string `json:"email,omitempty"`
	Stage       int    `json:"stage,omitempty"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.StandardClaims
}

// TokenConfig holds the signing secret and lifetimes
type TokenConfig struct {
	Secret          string
	RegistrationTTL time.Duration
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	EmailTTL        time.Duration
	ResetTTL        time.Duration
}

// TokenService signs and verifies HS256 JWTs
type TokenService struct {
	secret []byte
	cfg    TokenConfig
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.Secret),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Sign issues a token for claims valid for ttl and returns its expiry
func (s *TokenService) Sign(claims TokenClaims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = expiresAt.Unix()
	claims.Issuer = tokenIssuer
	if claims.Id == "" {
		claims.Id = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses a token and checks its purpose.
// It returns apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid on failure.
func (s *TokenService) Verify(tokenString, purpose string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}
	if !token.Valid || claims.Purpose != purpose || claims.Issuer != tokenIssuer {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// IssueRegistrationToken scopes steps 2 and 3 to one registration
func (s *TokenService) IssueRegistrationToken(registrationID string, stage int) (string, error) {
	token, _, err := s.Sign(TokenClaims{
		Purpose:        PurposeRegistration,
		Role:           models.RoleVendor,
		Stage:          stage,
		StandardClaims: jwt.StandardClaims{Subject: registrationID},
	}, s.cfg.RegistrationTTL)
	return token, err
}

// IssueSession creates an access and refresh token pair
func (s *TokenService) IssueSession(account *models.Account) (models.TokenPair, error) {
	access, accessExp, err := s.Sign(TokenClaims{
		Purpose:        PurposeAccess,
		Role:           account.Role,
		Email:          account.Email,
		StandardClaims: jwt.StandardClaims{Subject: account.ID.Hex()},
	}, s.cfg.AccessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, refreshExp, err := s.Sign(TokenClaims{
		Purpose:        PurposeRefresh,
		Role:           account.Role,
		StandardClaims: jwt.StandardClaims{Subject: account.ID.Hex()},
	}, s.cfg.RefreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *TokenService) IssueEmailVerification(registrationID, email string) (string, error) {
	token, _, err := s.Sign(TokenClaims{
		Purpose:        PurposeEmailVerification,
		Email:          email,
		StandardClaims: jwt.StandardClaims{Subject: registrationID},
	}, s.cfg.EmailTTL)
	return token, err
}

// IssuePasswordReset binds the token to a fingerprint of the current password hash,
// so it stops working once the password changes.
func (s *TokenService) IssuePasswordReset(account *models.Account, fingerprint string) (string, error) {
	token, _, err := s.Sign(TokenClaims{
		Purpose:        PurposePasswordReset,
		Role:           account.Role,
		Email:          account.Email,
		Fingerprint:    fingerprint,
		StandardClaims: jwt.StandardClaims{Subject: account.ID.Hex()},
	}, s.cfg.ResetTTL)
	return token, err
}

// remaining returns how long a token is still valid, used as revocation TTL
func (s *TokenService) remaining(claims *TokenClaims) time.Duration {
	return time.Unix(claims.ExpiresAt, 0).Sub(s.now())
}
