package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Database.IsEmbedded())
	require.Equal(t, 4, cfg.Database.ConnectRetries)
	require.Equal(t, 3*time.Second, cfg.Database.ConnectRetryDelay)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, "filesystem", cfg.Uploads.Backend)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, 8*time.Hour, cfg.Auth.AdminTTL)
	require.Equal(t, int64(10*1024*1024), cfg.Server.MaxUploadSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REUNITEIT_SERVER_PORT", "9000")
	t.Setenv("REUNITEIT_DATABASE_DRIVER", "postgres")
	t.Setenv("REUNITEIT_DATABASE_HOST", "db.internal")
	t.Setenv("REUNITEIT_DATABASE_USER", "app")
	t.Setenv("REUNITEIT_DATABASE_DATABASE", "reuniteit")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Contains(t, cfg.Database.DSN(), "host=db.internal")
}

func TestLoad_AdminPairLegacyEnvNames(t *testing.T) {
	// The admin credential pair has always been configured through these
	// bare names; they must keep working alongside the prefixed ones.
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "admin@example.com", cfg.Auth.AdminEmail)
	require.Equal(t, "s3cret", cfg.Auth.AdminPassword)
}

func TestLoad_PrefixedAdminPairWins(t *testing.T) {
	t.Setenv("REUNITEIT_AUTH_ADMIN_EMAIL", "new@example.com")
	t.Setenv("ADMIN_EMAIL", "old@example.com")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", cfg.Auth.AdminEmail)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("loading defaults: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mongodb" },
			wantErr: "database.driver",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Host = ""
			},
			wantErr: "database.host",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "unknown upload backend",
			mutate:  func(c *Config) { c.Uploads.Backend = "ftp" },
			wantErr: "uploads.backend",
		},
		{
			name: "s3 without bucket",
			mutate: func(c *Config) {
				c.Uploads.Backend = "s3"
				c.Uploads.S3.Bucket = ""
			},
			wantErr: "uploads.s3.bucket",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 2 },
			wantErr: "auth.bcrypt_cost",
		},
		{
			name:    "non-positive session ttl",
			mutate:  func(c *Config) { c.Auth.SessionTTL = 0 },
			wantErr: "auth.session_ttl",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})
}
