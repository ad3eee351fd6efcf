package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_IdentityConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("IDENTITY_USER_POOL_ID", "pool-test-1")
	os.Setenv("IDENTITY_DEFAULT_GROUP", "OWNERS")
	defer func() {
		os.Unsetenv("IDENTITY_USER_POOL_ID")
		os.Unsetenv("IDENTITY_DEFAULT_GROUP")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "pool-test-1", cfg.Identity.UserPoolID)
	assert.Equal(t, "OWNERS", cfg.Identity.DefaultGroup)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("IDENTITY_DEFAULT_GROUP")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("STORAGE_URL_EXPIRY_SECONDS")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "CUSTOMERS", cfg.Identity.DefaultGroup)
	assert.Equal(t, "crossroads", cfg.Database.Database)
	assert.Equal(t, 900, cfg.Storage.URLExpirySec)
}
