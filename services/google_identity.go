package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// GoogleIdentityVerifier validates Google ID tokens against Google's published keys.
// The key set is cached and refreshed in the background.
type GoogleIdentityVerifier struct {
	clientID string
	certsURL string
	keys     *jwk.AutoRefresh
}

func NewGoogleIdentityVerifier(ctx context.Context, clientID, certsURL string) *GoogleIdentityVerifier {
	ar := jwk.NewAutoRefresh(ctx)
	ar.Configure(certsURL, jwk.WithMinRefreshInterval(15*time.Minute))
	return &GoogleIdentityVerifier{clientID: clientID, certsURL: certsURL, keys: ar}
}

// VerifyIDToken returns apperrors.ErrTokenInvalid for tokens that fail verification
// and a plain error when the key set cannot be fetched.
func (v *GoogleIdentityVerifier) VerifyIDToken(ctx context.Context, idToken string) (*models.GoogleIdentity, error) {
	set, err := v.keys.Fetch(ctx, v.certsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch google public keys: %w", err)
	}

	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		key, found := set.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("google public key %q not found", kid)
		}
		var pubkey interface{}
		if err := key.Raw(&pubkey); err != nil {
			return nil, fmt.Errorf("parse google public key: %w", err)
		}
		return pubkey, nil
	})
	if err != nil || !token.Valid {
		log.Printf("Google auth: rejected ID token: %v", err)
		return nil, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	if v.clientID != "" && !claims.VerifyAudience(v.clientID, true) {
		return nil, apperrors.ErrTokenInvalid
	}
	issuerOK := false
	for _, iss := range googleIssuers {
		if claims.VerifyIssuer(iss, true) {
			issuerOK = true
			break
		}
	}
	if !issuerOK {
		return nil, apperrors.ErrTokenInvalid
	}

	identity := &models.GoogleIdentity{}
	identity.Subject, _ = claims["sub"].(string)
	identity.Email, _ = claims["email"].(string)
	identity.Name, _ = claims["name"].(string)
	switch verified := claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = verified
	case string:
		identity.EmailVerified = verified == "true"
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, apperrors.ErrTokenInvalid
	}
	return identity, nil
}
