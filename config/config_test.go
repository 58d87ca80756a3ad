package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evea/evea_backend/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.RegistrationTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.LoginLockoutDuration)
	assert.Equal(t, 5, cfg.MaxFailedLogins)
	assert.Equal(t, "evea", cfg.DBName)
	assert.False(t, cfg.DriveEnabled())
	assert.Equal(t, models.DefaultDocumentPolicies(), cfg.DocumentPolicies)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ShortSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DocumentPolicyOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "test")
	t.Setenv("DOC_PAN_CARD_MAX_BYTES", "1048576")
	t.Setenv("DOC_BANK_STATEMENT_EXTENSIONS", "pdf, .PNG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1048576), cfg.DocumentPolicies[models.DocPANCard].MaxBytes)
	assert.Equal(t, []string{".pdf", ".png"}, cfg.DocumentPolicies[models.DocBankStatement].AllowedExtensions)
	assert.True(t, cfg.DocumentPolicies[models.DocBankStatement].Required)
}

func TestLoad_InvalidDocumentOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "test")
	t.Setenv("DOC_IDENTITY_PROOF_MAX_BYTES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOC_IDENTITY_PROOF_MAX_BYTES")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "BUSINESS_REGISTRATION", envName("businessRegistration"))
	assert.Equal(t, "GST_CERTIFICATE", envName("gstCertificate"))
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://evea.in, ,http://localhost:3000"}
	assert.Equal(t, []string{"https://evea.in", "http://localhost:3000"}, cfg.AllowedOrigins())
}
