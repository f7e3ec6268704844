package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := load("test", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, "owner", cfg.Announcements.FeedScope)
	assert.Equal(t, "console", cfg.Mail.Provider)
	assert.Equal(t, "auth.session.ended", cfg.NATS.Subject)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9000"
announcements:
  feed_scope: all
kafka:
  topic: custom.changes
database:
  user: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(yaml), 0o600))

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_USER", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := load("staging", dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "all", cfg.Announcements.FeedScope)
	assert.Equal(t, "custom.changes", cfg.Kafka.Topic)
	assert.Equal(t, "from-env", cfg.Database.User)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := load("test", t.TempDir())
		assert.ErrorContains(t, err, "jwt.secret")
	})

	t.Run("BadFeedScope", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("ANNOUNCEMENTS_FEED_SCOPE", "everyone")
		_, err := load("test", t.TempDir())
		assert.ErrorContains(t, err, "feed_scope")
	})

	t.Run("SendGridNeedsKey", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("MAIL_PROVIDER", "sendgrid")
		t.Setenv("SENDGRID_API_KEY", "")
		_, err := load("test", t.TempDir())
		assert.ErrorContains(t, err, "sendgrid_api_key")
	})
}
