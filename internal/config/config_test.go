package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8090

[database]
host = "localhost"
user = "postgres"
password = "postgres"
dbname = "marketplace"

[user_service]
url = "http://localhost:8081"

[payment]
collector_user_id = 1
qr_code_url = "https://example.com/qr.png"
subscription_fee = "990.00"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// .env ищется в рабочей директории
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "marketplace.bookings", cfg.Kafka.Topic)
	assert.Equal(t, "RUB", cfg.Payment.Currency)
	assert.Equal(t, 600, cfg.RateLimit.IdleTTL)
	assert.False(t, cfg.RateLimit.TrustProxy)

	fee, err := cfg.Payment.Fee()
	require.NoError(t, err)
	assert.Equal(t, "990", fee.String())

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=marketplace sslmode=disable",
		cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "k1:9092,k2:9092", cfg.Kafka.Brokers)
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	require.NoError(t, os.WriteFile(".env", []byte("REDIS_ENABLED=true\nREDIS_ADDR=redis:6379\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("REDIS_ENABLED")
		_ = os.Unsetenv("REDIS_ADDR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
		env    map[string]string
	}{
		{
			name:   "missing database host",
			config: "[database]\ndbname = \"x\"\n[user_service]\nurl = \"http://u\"\n",
		},
		{
			name:   "kafka enabled without brokers",
			config: sampleConfig + "\n[kafka]\nenabled = true\n",
		},
		{
			name:   "negative limiter idle ttl",
			config: sampleConfig + "\n[rate_limit]\nidle_ttl = -1\n",
		},
		{
			name:   "bad port in env",
			config: sampleConfig,
			env:    map[string]string{"DB_PORT": "abc"},
		},
		{
			name:   "bad fee",
			config: "[database]\nhost = \"h\"\ndbname = \"x\"\n[user_service]\nurl = \"http://u\"\n[payment]\nsubscription_fee = \"free\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.config)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
