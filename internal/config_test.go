package courier

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nazarhussain/contact-courier/env"
	"github.com/nazarhussain/contact-courier/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := values[k]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"API_KEY":       "secret",
		"FROM_ADDR":     "Philip Mutua <hello@philipmutua.xyz>",
		"NOTIFY_TO":     "ops@philipmutua.xyz",
		"EMAIL_API_KEY": "re_123",
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := configFrom(env.NewWithLookup(lookupFrom(baseEnv()), nil))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, []string{"https://philipmutua.xyz", "https://www.philipmutua.xyz"}, cfg.AllowedOrigins)
	assert.Equal(t, 64, cfg.MaxBodyKB)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, ProviderAPI, cfg.Email.Provider)
	assert.Equal(t, 10*time.Second, cfg.Email.Timeout)
	assert.Equal(t, "Philip Mutua", cfg.Email.Signer)

	_, ok := cfg.NewSender().(*mailer.APISender)
	assert.True(t, ok)
}

func TestConfigOverrides(t *testing.T) {
	vals := baseEnv()
	vals["ALLOWED_ORIGINS"] = "https://a.example, https://b.example,"
	vals["RATE_LIMIT_MAX"] = "10"
	vals["RATE_LIMIT_WINDOW"] = "1h"
	vals["REDIS_URL"] = " redis://localhost:6379/0 "
	vals["EMAIL_PROVIDER"] = "SMTP"
	vals["SMTP_HOST"] = "smtp.example.com"
	vals["SMTP_SSL"] = "true"

	cfg, err := configFrom(env.NewWithLookup(lookupFrom(vals), nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, ProviderSMTP, cfg.Email.Provider)
	assert.Equal(t, 587, cfg.Email.SMTP.Port)
	assert.True(t, cfg.Email.SMTP.SSL)

	sender, ok := cfg.NewSender().(mailer.SMTPSender)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com", sender.Host)
}

func TestConfigReportsEveryProblem(t *testing.T) {
	vals := map[string]string{
		"RATE_LIMIT_MAX":    "0",
		"RATE_LIMIT_WINDOW": "soon",
		"EMAIL_PROVIDER":    "pigeon",
	}

	_, err := configFrom(env.NewWithLookup(lookupFrom(vals), nil))
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"API_KEY", "FROM_ADDR", "NOTIFY_TO", "RATE_LIMIT_WINDOW", "RATE_LIMIT_MAX", "EMAIL_PROVIDER"} {
		assert.Contains(t, msg, want)
	}
}

func TestConfigRequiresProviderCredentials(t *testing.T) {
	vals := baseEnv()
	delete(vals, "EMAIL_API_KEY")
	_, err := configFrom(env.NewWithLookup(lookupFrom(vals), nil))
	require.ErrorContains(t, err, "EMAIL_API_KEY")

	vals["EMAIL_PROVIDER"] = "smtp"
	_, err = configFrom(env.NewWithLookup(lookupFrom(vals), nil))
	require.ErrorContains(t, err, "SMTP_HOST")
}

func TestConfigFileProvidesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: from-file
from_addr: hello@philipmutua.xyz
notify_to: ops@philipmutua.xyz
email_api_key: re_file
rate_limit_max: 3
allowed_origins:
  - https://one.example
  - https://two.example
`), 0o600))

	defaults, err := readConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3", defaults["rate_limit_max"])

	cfg, err := configFrom(env.NewWithLookup(lookupFrom(map[string]string{"API_KEY": "from-env"}), defaults))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, 3, cfg.RateLimitMax)
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, cfg.AllowedOrigins)
}

func TestConfigFileErrors(t *testing.T) {
	_, err := readConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: [unclosed"), 0o600))
	_, err = readConfigFile(path)
	require.ErrorContains(t, err, "parse config file")
}
