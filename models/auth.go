package models

import "time"

// Credentials are submitted once at step 1 and never persisted in plaintext
type Credentials struct {
	AuthMethod      string `json:"authMethod" validate:"required,oneof=local google"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	GoogleIDToken   string `json:"googleIdToken,omitempty"`
}

// Step1Request is the body of the business info step
type Step1Request struct {
	BusinessInfo BusinessInfo `json:"businessInfo"`
	Credentials  Credentials  `json:"credentials"`
}

// Step2Submission carries the decoded multipart body of the documents step
type Step2Submission struct {
	Documents           []DocumentUpload
	BankDetails         BankDetails
	RegistrationNumbers RegistrationNumbers
}

// Step3Request is the body of the services step
type Step3Request struct {
	Services              []ServiceOffering      `json:"services" validate:"required,min=1,dive"`
	RecommendationAnswers *RecommendationAnswers `json:"recommendationAnswers,omitempty"`
}

// RegistrationResult is returned by every registration step
type RegistrationResult struct {
	Registration *VendorRegistration `json:"registration"`
	Status       StatusInfo          `json:"status"`
	Token        string              `json:"token,omitempty"`
	NextStep     int                 `json:"nextStep,omitempty"`
}

// NewRegistrationResult attaches presentation metadata and the next step
func NewRegistrationResult(r *VendorRegistration, token string) *RegistrationResult {
	res := &RegistrationResult{
		Registration: r,
		Status:       StatusPresentation(r.RegistrationStatus),
		Token:        token,
	}
	if r.Step < StepServices {
		res.NextStep = r.Step + 1
	}
	return res
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ReviewNoteRequest is the body of reviewer actions that record a note
type ReviewNoteRequest struct {
	Note string `json:"note" validate:"required,min=3,max=2000"`
}

// TokenPair is a login session
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	TokenType        string    `json:"tokenType"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// LoginResult is the body returned by login, refresh and Google sign-in
type LoginResult struct {
	Session TokenPair `json:"session"`
	Role    string    `json:"role"`
	UserID  string    `json:"userId"`
	Email   string    `json:"email"`
}

// GoogleIdentity is a verified Google account
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// Email is an outbound message
type Email struct {
	To      string
	Subject string
	HTML    string
}
