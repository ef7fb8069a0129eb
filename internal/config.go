package courier

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nazarhussain/contact-courier/env"
	"github.com/nazarhussain/contact-courier/internal/mailer"
	"github.com/nazarhussain/contact-courier/internal/ratelimit"
	"gopkg.in/yaml.v3"
)

/*
CONFIG (environment variables; CONFIG_FILE may point at a flat YAML file
whose keys provide defaults, e.g. `rate_limit_max: 5`):

  Required:
    API_KEY                 shared secret expected in X-API-Key
    FROM_ADDR               sender, e.g. "Philip Mutua <hello@philipmutua.xyz>"
    NOTIFY_TO               operator address receiving notifications
  HTTP:
    LISTEN_ADDR             (default ":3000")
    ALLOWED_ORIGINS         comma-separated exact origins
    MAX_BODY_KB             (default 64)
  Rate limiting:
    REDIS_URL               redis://... ; "memory" keeps counters in process;
                            empty disables rate limiting
    RATE_LIMIT_MAX          (default 5)
    RATE_LIMIT_WINDOW       (default 15m)
    STORE_TIMEOUT           (default 2s)
  E-mail:
    EMAIL_PROVIDER          "api" (default) or "smtp"
    EMAIL_API_URL           (default https://api.resend.com/emails)
    EMAIL_API_KEY           required for "api"
    EMAIL_RPS               provider call rate (default 2, 0 = unlimited)
    EMAIL_TIMEOUT           (default 10s)
    SIGNER_NAME             closes the auto-reply (default "Philip Mutua")
    SMTP_HOST, SMTP_PORT (587), SMTP_USER, SMTP_PASS, SMTP_SSL   for "smtp"
*/

const (
	ProviderAPI  = "api"
	ProviderSMTP = "smtp"

	// MemoryStoreURL selects the process-local rate limit store.
	MemoryStoreURL = "memory"
)

var defaultOrigins = []string{
	"https://philipmutua.xyz",
	"https://www.philipmutua.xyz",
}

type SmtpCfg struct {
	Host string
	Port int
	User string
	Pass string
	SSL  bool
}

type EmailCfg struct {
	Provider string
	APIURL   string
	APIKey   string
	RPS      float64
	Timeout  time.Duration
	From     string
	NotifyTo string
	Signer   string
	SMTP     SmtpCfg
}

type Config struct {
	ListenAddr      string
	APIKey          string
	AllowedOrigins  []string
	MaxBodyKB       int
	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
	StoreTimeout    time.Duration
	Email           EmailCfg
}

// LoadConfig reads CONFIG_FILE (if set) and the environment.
func LoadConfig() (*Config, error) {
	var defaults map[string]string
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if defaults, err = readConfigFile(path); err != nil {
			return nil, err
		}
	}
	return configFrom(env.New(defaults))
}

func configFrom(r *env.Reader) (*Config, error) {
	c := &Config{
		ListenAddr:      r.String("LISTEN_ADDR", ":3000"),
		APIKey:          r.Require("API_KEY"),
		AllowedOrigins:  r.List("ALLOWED_ORIGINS", defaultOrigins),
		MaxBodyKB:       r.Int("MAX_BODY_KB", 64),
		RedisURL:        strings.TrimSpace(r.String("REDIS_URL", "")),
		RateLimitMax:    r.Int("RATE_LIMIT_MAX", ratelimit.DefaultMaxRequests),
		RateLimitWindow: r.Duration("RATE_LIMIT_WINDOW", ratelimit.DefaultWindow),
		StoreTimeout:    r.Duration("STORE_TIMEOUT", ratelimit.DefaultStoreTimeout),
		Email: EmailCfg{
			Provider: strings.ToLower(r.String("EMAIL_PROVIDER", ProviderAPI)),
			APIURL:   r.String("EMAIL_API_URL", "https://api.resend.com/emails"),
			APIKey:   r.String("EMAIL_API_KEY", ""),
			RPS:      r.Float("EMAIL_RPS", 2),
			Timeout:  r.Duration("EMAIL_TIMEOUT", mailer.DefaultTimeout),
			From:     r.Require("FROM_ADDR"),
			NotifyTo: r.Require("NOTIFY_TO"),
			Signer:   r.String("SIGNER_NAME", "Philip Mutua"),
			SMTP: SmtpCfg{
				Host: r.String("SMTP_HOST", ""),
				Port: r.Int("SMTP_PORT", 587),
				User: r.String("SMTP_USER", ""),
				Pass: r.String("SMTP_PASS", ""),
				SSL:  r.Bool("SMTP_SSL", false),
			},
		},
	}

	errs := []error{r.Err()}
	switch c.Email.Provider {
	case ProviderAPI:
		if c.Email.APIKey == "" {
			errs = append(errs, errors.New("EMAIL_API_KEY is required when EMAIL_PROVIDER=api"))
		}
	case ProviderSMTP:
		if c.Email.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when EMAIL_PROVIDER=smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("EMAIL_PROVIDER must be %q or %q", ProviderAPI, ProviderSMTP))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be > 0"))
	}
	if c.RateLimitWindow < time.Second {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be at least 1s"))
	}
	if c.MaxBodyKB <= 0 {
		errs = append(errs, errors.New("MAX_BODY_KB must be > 0"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func readConfigFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		switch vv := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(vv))
			for _, p := range vv {
				parts = append(parts, fmt.Sprint(p))
			}
			out[k] = strings.Join(parts, ",")
		default:
			out[k] = fmt.Sprint(vv)
		}
	}
	return out, nil
}

// NewSender builds the configured e-mail transport.
func (c *Config) NewSender() mailer.Sender {
	if c.Email.Provider == ProviderSMTP {
		s := c.Email.SMTP
		return mailer.SMTPSender{Host: s.Host, Port: s.Port, User: s.User, Pass: s.Pass, SSL: s.SSL}
	}
	return mailer.NewAPISender(c.Email.APIURL, c.Email.APIKey, mailer.WithRateLimit(c.Email.RPS, 2))
}
