package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/models"
)

// RegistrationStore persists vendor registrations.
// UpdateIfVersion reports false without error when the record moved on.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.VendorRegistration) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorRegistration, error)
	FindByEmail(ctx context.Context, email string) (*models.VendorRegistration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]*models.VendorRegistration, error)
	UpdateIfVersion(ctx context.Context, id primitive.ObjectID, expectedStep int, expectedVersion int64, patch models.RegistrationPatch) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AdminStore interface {
	Create(ctx context.Context, admin *models.AdminAccount) error
	FindByEmail(ctx context.Context, email string) (*models.AdminAccount, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminAccount, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// DocumentStore keeps uploaded compliance documents outside the database
type DocumentStore interface {
	Upload(ctx context.Context, file models.FileUpload) (models.FileRef, error)
	Delete(ctx context.Context, id string) error
}

type Notifier interface {
	Send(ctx context.Context, email models.Email) error
}

// LoginAttemptStore counts consecutive failed logins per account
type LoginAttemptStore interface {
	// RecordFailure extends the account's failure streak; only Reset and Lock end it
	RecordFailure(ctx context.Context, account string) (int64, error)
	Lock(ctx context.Context, account string, until time.Time) error
	LockedUntil(ctx context.Context, account string) (time.Time, error)
	Reset(ctx context.Context, account string) error
}

type TokenRevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// Claim revokes jti and reports false when it was already revoked
	Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// IdentityVerifier checks Google ID tokens
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.GoogleIdentity, error)
}

// EventPublisher pushes registration events to connected reviewers and vendors
type EventPublisher interface {
	PublishToAdmins(event models.RegistrationEvent)
	PublishToUser(userID primitive.ObjectID, event models.RegistrationEvent)
}

type noopPublisher struct{}

func (noopPublisher) PublishToAdmins(models.RegistrationEvent) {}
func (noopPublisher) PublishToUser(primitive.ObjectID, models.RegistrationEvent) {}
