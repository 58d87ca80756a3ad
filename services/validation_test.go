package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

func TestValidator_RegistrationNumbers(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		numbers models.RegistrationNumbers
		failing []string
	}{
		{"valid PAN only", models.RegistrationNumbers{PANNumber: "ABCDE1234F"}, nil},
		{"valid PAN and GSTIN", models.RegistrationNumbers{PANNumber: "ABCDE1234F", GSTNumber: "29ABCDE1234F1Z5"}, nil},
		{"lowercase PAN", models.RegistrationNumbers{PANNumber: "abcde1234f"}, []string{"registrationNumbers.panNumber"}},
		{"short PAN", models.RegistrationNumbers{PANNumber: "ABCD1234F"}, []string{"registrationNumbers.panNumber"}},
		{"bad GSTIN", models.RegistrationNumbers{PANNumber: "ABCDE1234F", GSTNumber: "29ABCDE1234F1X5"}, []string{"registrationNumbers.gstNumber"}},
		{"missing PAN", models.RegistrationNumbers{}, []string{"registrationNumbers.panNumber"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := v.Fields("registrationNumbers", tt.numbers)
			var got []string
			for _, f := range fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.failing, got)
		})
	}
}

func TestValidator_BankDetails(t *testing.T) {
	v := NewValidator()
	valid := models.BankDetails{
		AccountHolderName: "Asha Rao",
		AccountNumber:     "123456789012",
		IFSCCode:          "SBIN0001234",
		BankName:          "State Bank of India",
	}
	assert.Empty(t, v.Fields("bankDetails", valid))

	bad := valid
	bad.IFSCCode = "SBIN1001234"
	bad.AccountNumber = "12AB"
	err := v.Struct("bankDetails", bad)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("bankDetails.ifscCode"))
	assert.True(t, verr.Has("bankDetails.accountNumber"))
	for _, f := range verr.Fields {
		assert.NotEmpty(t, f.Message)
	}
}

func TestValidator_Credentials(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		creds models.Credentials
		field string
	}{
		{"local ok", models.Credentials{AuthMethod: "local", Password: "longenough", ConfirmPassword: "longenough"}, ""},
		{"too short", models.Credentials{AuthMethod: "local", Password: "short", ConfirmPassword: "short"}, "credentials.password"},
		{"mismatch", models.Credentials{AuthMethod: "local", Password: "longenough", ConfirmPassword: "longenougH"}, "credentials.confirmPassword"},
		{"google without token", models.Credentials{AuthMethod: "google"}, "credentials.googleIdToken"},
		{"unknown method", models.Credentials{AuthMethod: "facebook"}, "credentials.authMethod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := v.Fields("credentials", tt.creds)
			if tt.field == "" {
				assert.Empty(t, fields)
				return
			}
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.Var("note", "Looks good", noteRules))

	fields := v.Var("note", "", noteRules)
	require.Len(t, fields, 1)
	assert.Equal(t, "note", fields[0].Field)
	assert.Equal(t, "required", fields[0].Rule)
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "bankDetails.ifscCode", fieldPath("bankDetails", "BankDetails.ifscCode"))
	assert.Equal(t, "services[0].title", fieldPath("", "Step3Request.services[0].title"))
	assert.Equal(t, "note", fieldPath("note", "note"))
}
