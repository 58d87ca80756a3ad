package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session roles
const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// AdminAccount is a reviewer who can act on registrations
type AdminAccount struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	FullName     string             `json:"fullName" bson:"fullName"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Role         string             `json:"role" bson:"role"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Account is the login view shared by vendors and admins
type Account struct {
	ID            primitive.ObjectID
	Email         string
	Role          string
	AuthMethod    string
	PasswordHash  string
	GoogleSubject string
}

// AccountFromRegistration builds the vendor login view
func AccountFromRegistration(r *VendorRegistration) *Account {
	return &Account{
		ID:            r.ID,
		Email:         r.BusinessInfo.Email,
		Role:          RoleVendor,
		AuthMethod:    r.Credentials.AuthMethod,
		PasswordHash:  r.Credentials.PasswordHash,
		GoogleSubject: r.Credentials.GoogleSubject,
	}
}

// AccountFromAdmin builds the admin login view
func AccountFromAdmin(a *AdminAccount) *Account {
	return &Account{
		ID:           a.ID,
		Email:        a.Email,
		Role:         RoleAdmin,
		AuthMethod:   AuthMethodLocal,
		PasswordHash: a.PasswordHash,
	}
}
