// models/vendor_registration.go
package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationStatus is the review state of a vendor registration
type RegistrationStatus string

const (
	StatusPendingDocuments RegistrationStatus = "pending_documents"
	StatusPendingReview    RegistrationStatus = "pending_review"
	StatusApproved         RegistrationStatus = "approved"
	StatusRejected         RegistrationStatus = "rejected"
	StatusSuspended        RegistrationStatus = "suspended"
)

// AllStatuses lists every registration status in lifecycle order
var AllStatuses = []RegistrationStatus{
	StatusPendingDocuments,
	StatusPendingReview,
	StatusApproved,
	StatusRejected,
	StatusSuspended,
}

// IsValid reports whether s is a known status
func (s RegistrationStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Registration steps
const (
	StepBusinessInfo = 1
	StepDocuments    = 2
	StepServices     = 3
)

// ProfileCompletionForStep derives the completion percentage from the highest completed step
func ProfileCompletionForStep(step int) int {
	switch {
	case step >= StepServices:
		return 100
	case step == StepDocuments:
		return 75
	case step == StepBusinessInfo:
		return 25
	default:
		return 0
	}
}

// Auth methods
const (
	AuthMethodLocal  = "local"
	AuthMethodGoogle = "google"
)

// VendorRegistration is the aggregate root of the onboarding flow
type VendorRegistration struct {
	ID                    primitive.ObjectID              `json:"id" bson:"_id,omitempty"`
	Version               int64                           `json:"version" bson:"version"`
	Step                  int                             `json:"step" bson:"step"`
	RegistrationStatus    RegistrationStatus              `json:"registrationStatus" bson:"registrationStatus"`
	BusinessInfo          BusinessInfo                    `json:"businessInfo" bson:"businessInfo"`
	Credentials           StoredCredentials               `json:"-" bson:"credentials"`
	EmailVerified         bool                            `json:"emailVerified" bson:"emailVerified"`
	EmailVerifiedAt       *time.Time                      `json:"emailVerifiedAt,omitempty" bson:"emailVerifiedAt,omitempty"`
	BankDetails           *BankDetails                    `json:"bankDetails,omitempty" bson:"bankDetails,omitempty"`
	RegistrationNumbers   *RegistrationNumbers            `json:"registrationNumbers,omitempty" bson:"registrationNumbers,omitempty"`
	Documents             map[DocumentType]DocumentRecord `json:"documents" bson:"documents"`
	Services              []ServiceOffering               `json:"services" bson:"services"`
	RecommendationAnswers *RecommendationAnswers          `json:"recommendationAnswers,omitempty" bson:"recommendationAnswers,omitempty"`
	AdminNotes            []AdminNote                     `json:"adminNotes" bson:"adminNotes"`
	ProfileCompletion     int                             `json:"profileCompletion" bson:"profileCompletion"`
	SubmittedAt           *time.Time                      `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	ReviewedAt            *time.Time                      `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ReviewedBy            *primitive.ObjectID             `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	CreatedAt             time.Time                       `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time                       `json:"updatedAt" bson:"updatedAt"`
}

// BusinessInfo is collected at step 1
type BusinessInfo struct {
	BusinessName   string           `json:"businessName" bson:"businessName" validate:"required,min=2,max=120"`
	BusinessType   string           `json:"businessType" bson:"businessType" validate:"required,oneof=individual proprietorship partnership llp private_limited public_limited"`
	OwnerName      string           `json:"ownerName" bson:"ownerName" validate:"required,min=2,max=120"`
	Email          string           `json:"email" bson:"email" validate:"required,email"`
	Phone          string           `json:"phone" bson:"phone" validate:"required,phone10"`
	AlternatePhone string           `json:"alternatePhone,omitempty" bson:"alternatePhone,omitempty" validate:"omitempty,phone10"`
	Website        string           `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Description    string           `json:"description,omitempty" bson:"description,omitempty" validate:"max=2000"`
	Address        Address          `json:"address" bson:"address"`
	Categories     []VendorCategory `json:"categories" bson:"categories" validate:"required,min=1,dive,category"`
}

// Address of the vendor's business
type Address struct {
	Street  string `json:"street" bson:"street" validate:"required"`
	City    string `json:"city" bson:"city" validate:"required"`
	State   string `json:"state" bson:"state" validate:"required"`
	Pincode string `json:"pincode" bson:"pincode" validate:"required,pincode"`
	Country string `json:"country" bson:"country"`
}

// StoredCredentials never carries a plaintext password
type StoredCredentials struct {
	AuthMethod    string `bson:"authMethod"`
	PasswordHash  string `bson:"passwordHash,omitempty"`
	GoogleSubject string `bson:"googleSubject,omitempty"`
}

// BankDetails is collected at step 2
type BankDetails struct {
	AccountHolderName string `json:"accountHolderName" bson:"accountHolderName" validate:"required,min=2,max=120"`
	AccountNumber     string `json:"accountNumber" bson:"accountNumber" validate:"required,numeric,min=9,max=18"`
	IFSCCode          string `json:"ifscCode" bson:"ifscCode" validate:"required,ifsc"`
	BankName          string `json:"bankName" bson:"bankName" validate:"required"`
	BranchName        string `json:"branchName,omitempty" bson:"branchName,omitempty"`
}

// RegistrationNumbers are the statutory identifiers collected at step 2
type RegistrationNumbers struct {
	PANNumber                  string `json:"panNumber" bson:"panNumber" validate:"required,pan"`
	GSTNumber                  string `json:"gstNumber,omitempty" bson:"gstNumber,omitempty" validate:"omitempty,gstin"`
	BusinessRegistrationNumber string `json:"businessRegistrationNumber,omitempty" bson:"businessRegistrationNumber,omitempty" validate:"max=50"`
}

// FileRef is an opaque handle to an externally stored file
type FileRef struct {
	ID  string `json:"id" bson:"id"`
	URL string `json:"url" bson:"url"`
}

// DocumentRecord tracks one uploaded compliance document
type DocumentRecord struct {
	FileRef    FileRef             `json:"fileRef" bson:"fileRef"`
	FileName   string              `json:"fileName" bson:"fileName"`
	MimeType   string              `json:"mimeType" bson:"mimeType"`
	SizeBytes  int64               `json:"sizeBytes" bson:"sizeBytes"`
	Verified   bool                `json:"verified" bson:"verified"`
	VerifiedBy *primitive.ObjectID `json:"verifiedBy,omitempty" bson:"verifiedBy,omitempty"`
	VerifiedAt *time.Time          `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	UploadedAt time.Time           `json:"uploadedAt" bson:"uploadedAt"`
}

// ServiceOffering is one service listed at step 3
type ServiceOffering struct {
	Title         string         `json:"title" bson:"title" validate:"required,min=2,max=120"`
	Category      VendorCategory `json:"category" bson:"category" validate:"required,category"`
	Description   string         `json:"description" bson:"description" validate:"max=2000"`
	EventTypes    []EventType    `json:"eventTypes" bson:"eventTypes" validate:"dive,eventtype"`
	GuestCapacity *GuestCapacity `json:"guestCapacity,omitempty" bson:"guestCapacity,omitempty"`
	Packages      []Package      `json:"packages" bson:"packages" validate:"required,min=1,dive"`
}

// GuestCapacity bounds; zero means unspecified
type GuestCapacity struct {
	Min int `json:"min" bson:"min" validate:"gte=0"`
	Max int `json:"max" bson:"max" validate:"gte=0"`
}

// Package is a priced bundle inside a service offering
type Package struct {
	Name        string   `json:"name" bson:"name" validate:"required"`
	Price       float64  `json:"price" bson:"price" validate:"gt=0"`
	Duration    string   `json:"duration,omitempty" bson:"duration,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty" validate:"max=1000"`
	Inclusions  []string `json:"inclusions,omitempty" bson:"inclusions,omitempty"`
}

// RecommendationAnswers are the optional questionnaire answers from step 3
type RecommendationAnswers struct {
	ExperienceYears int      `json:"experienceYears" bson:"experienceYears" validate:"gte=0,lte=80"`
	TeamSize        int      `json:"teamSize" bson:"teamSize" validate:"gte=0"`
	EventsPerMonth  int      `json:"eventsPerMonth" bson:"eventsPerMonth" validate:"gte=0"`
	TravelRadiusKm  int      `json:"travelRadiusKm" bson:"travelRadiusKm" validate:"gte=0"`
	PriceRange      string   `json:"priceRange,omitempty" bson:"priceRange,omitempty" validate:"omitempty,oneof=budget mid premium luxury"`
	Languages       []string `json:"languages,omitempty" bson:"languages,omitempty"`
}

// Reviewer actions recorded on admin notes
const (
	NoteActionReject      = "reject"
	NoteActionRequestDocs = "request_documents"
	NoteActionSuspend     = "suspend"
	NoteActionReinstate   = "reinstate"
	NoteActionUnverify    = "unverify_document"
	NoteActionApprove     = "approve"
)

// AdminNote is an append-only reviewer note
type AdminNote struct {
	Note    string             `json:"note" bson:"note"`
	Action  string             `json:"action" bson:"action"`
	AddedBy primitive.ObjectID `json:"addedBy" bson:"addedBy"`
	AddedAt time.Time          `json:"addedAt" bson:"addedAt"`
}

// RegistrationPatch is a partial update applied under compare-and-swap.
// Nil fields are left untouched.
type RegistrationPatch struct {
	Step                  *int
	RegistrationStatus    *RegistrationStatus
	ProfileCompletion     *int
	EmailVerified         *bool
	EmailVerifiedAt       *time.Time
	PasswordHash          *string
	BankDetails           *BankDetails
	RegistrationNumbers   *RegistrationNumbers
	Documents             map[DocumentType]DocumentRecord
	Services              []ServiceOffering
	RecommendationAnswers *RecommendationAnswers
	SubmittedAt           *time.Time
	ReviewedAt            *time.Time
	ReviewedBy            *primitive.ObjectID
	AppendNote            *AdminNote
}

// Apply mutates r in place; used by the in-memory store and tests
func (p RegistrationPatch) Apply(r *VendorRegistration, now time.Time) {
	if p.Step != nil {
		r.Step = *p.Step
	}
	if p.RegistrationStatus != nil {
		r.RegistrationStatus = *p.RegistrationStatus
	}
	if p.ProfileCompletion != nil {
		r.ProfileCompletion = *p.ProfileCompletion
	}
	if p.EmailVerified != nil {
		r.EmailVerified = *p.EmailVerified
	}
	if p.EmailVerifiedAt != nil {
		t := *p.EmailVerifiedAt
		r.EmailVerifiedAt = &t
	}
	if p.PasswordHash != nil {
		r.Credentials.PasswordHash = *p.PasswordHash
	}
	if p.BankDetails != nil {
		b := *p.BankDetails
		r.BankDetails = &b
	}
	if p.RegistrationNumbers != nil {
		n := *p.RegistrationNumbers
		r.RegistrationNumbers = &n
	}
	if len(p.Documents) > 0 {
		if r.Documents == nil {
			r.Documents = make(map[DocumentType]DocumentRecord, len(p.Documents))
		}
		for k, v := range p.Documents {
			r.Documents[k] = v.clone()
		}
	}
	if p.Services != nil {
		r.Services = cloneServices(p.Services)
	}
	if p.RecommendationAnswers != nil {
		a := *p.RecommendationAnswers
		r.RecommendationAnswers = &a
	}
	if p.SubmittedAt != nil {
		t := *p.SubmittedAt
		r.SubmittedAt = &t
	}
	if p.ReviewedAt != nil {
		t := *p.ReviewedAt
		r.ReviewedAt = &t
	}
	if p.ReviewedBy != nil {
		id := *p.ReviewedBy
		r.ReviewedBy = &id
	}
	if p.AppendNote != nil {
		r.AdminNotes = append(r.AdminNotes, *p.AppendNote)
	}
	r.Version++
	r.UpdatedAt = now
}

// Clone returns a deep copy so callers cannot mutate stored state
func (r *VendorRegistration) Clone() *VendorRegistration {
	if r == nil {
		return nil
	}
	c := *r
	if r.Documents != nil {
		c.Documents = make(map[DocumentType]DocumentRecord, len(r.Documents))
		for k, v := range r.Documents {
			c.Documents[k] = v.clone()
		}
	}
	c.Services = cloneServices(r.Services)
	c.AdminNotes = slices.Clone(r.AdminNotes)
	c.BusinessInfo.Categories = slices.Clone(r.BusinessInfo.Categories)
	c.BankDetails = clonePtr(r.BankDetails)
	c.RegistrationNumbers = clonePtr(r.RegistrationNumbers)
	if r.RecommendationAnswers != nil {
		a := *r.RecommendationAnswers
		a.Languages = slices.Clone(a.Languages)
		c.RecommendationAnswers = &a
	}
	c.EmailVerifiedAt = clonePtr(r.EmailVerifiedAt)
	c.SubmittedAt = clonePtr(r.SubmittedAt)
	c.ReviewedAt = clonePtr(r.ReviewedAt)
	c.ReviewedBy = clonePtr(r.ReviewedBy)
	return &c
}

func (d DocumentRecord) clone() DocumentRecord {
	d.VerifiedBy = clonePtr(d.VerifiedBy)
	d.VerifiedAt = clonePtr(d.VerifiedAt)
	return d
}

func cloneServices(services []ServiceOffering) []ServiceOffering {
	out := slices.Clone(services)
	for i := range out {
		svc := &out[i]
		svc.EventTypes = slices.Clone(svc.EventTypes)
		svc.GuestCapacity = clonePtr(svc.GuestCapacity)
		svc.Packages = slices.Clone(svc.Packages)
		for j := range svc.Packages {
			svc.Packages[j].Inclusions = slices.Clone(svc.Packages[j].Inclusions)
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// RegistrationFilter narrows registration listings
type RegistrationFilter struct {
	Status RegistrationStatus
	Limit  int64
	Skip   int64
}
