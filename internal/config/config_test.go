package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8080",
		DBSSLMode:                "disable",
		DBPassword:               "secure-password",
		DBConnMaxLifetimeMinutes: 1,
		RedisURL:                 "localhost:6379",
		AccessTokenSecret:        "access-secret-at-least-32-chars-long!!",
		AccessTokenExpiresIn:     15 * time.Minute,
		RefreshTokenSecret:       "refresh-secret-at-least-32-chars-long!",
		RefreshTokenExpiresIn:    24 * time.Hour,
		BcryptCost:               MinBcryptCost,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateSecrets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing access secret", func(c *Config) { c.AccessTokenSecret = "" }},
		{"shared secrets", func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }},
		{"zero access ttl", func(c *Config) { c.AccessTokenExpiresIn = 0 }},
		{"zero refresh ttl", func(c *Config) { c.RefreshTokenExpiresIn = 0 }},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.AccessTokenSecret = defaultAccessSecret
		}},
		{"short secret in production", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.RefreshTokenSecret = "short"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_ValidateAllowsMissingRefreshSecret(t *testing.T) {
	c := validConfig()
	c.RefreshTokenSecret = ""
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("ACCESS_TOKEN_EXPIRES_IN", "5m")
	t.Setenv("BCRYPT_COST", "4")
	defer viper.Reset()

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 5*time.Minute, c.AccessTokenExpiresIn)
	assert.Equal(t, 168*time.Hour, c.RefreshTokenExpiresIn)
	assert.Equal(t, MinBcryptCost, c.BcryptCost)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("AGORA_DOTENV_PROBE=from-file\nAGORA_DOTENV_KEEP=from-file\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("AGORA_DOTENV_KEEP", "from-process")
	t.Cleanup(func() { _ = os.Unsetenv("AGORA_DOTENV_PROBE") })

	loadDotEnv()

	assert.Equal(t, "from-file", os.Getenv("AGORA_DOTENV_PROBE"))
	assert.Equal(t, "from-process", os.Getenv("AGORA_DOTENV_KEEP"))
}
