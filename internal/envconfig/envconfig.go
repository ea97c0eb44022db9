// Package envconfig reads goScope binary configuration from the environment, after
// loading any .env file found in the working directory.
package envconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	goScope "github.com/MrEthical07/goScope"
	"github.com/MrEthical07/goScope/acl"
)

// Config is the flattened binary configuration.
type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	PrivateKey    string
	PublicKey     string
	Digest        string
	ApplicationID string
	TokenTTL      time.Duration
	AdminTTL      time.Duration
	DefaultScopes []acl.Scope

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	RateLimit    bool
	RateLimitMax int
	RateWindow   time.Duration

	Metrics bool
	Audit   bool

	// OTLPEndpoint enables push export of engine metrics when set. It is the full
	// collector URL, e.g. "http://collector:4318/v1/metrics".
	OTLPEndpoint string
	OTLPInterval time.Duration
}

// Load reads files (default ".env") into the process environment without overriding
// variables that are already set, then parses the GOSCOPE_* variables. Missing files
// are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return LoadFrom(os.Getenv)
}

// LoadFrom parses configuration through getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
	r := reader{getenv: getenv}
	defaults := goScope.DefaultConfig()

	cfg := Config{
		Env:           r.str("GOSCOPE_ENV", "dev"),
		LogLevel:      r.str("GOSCOPE_LOG_LEVEL", ""),
		HTTPAddr:      r.str("GOSCOPE_HTTP_ADDR", ":8080"),
		PrivateKey:    r.str("GOSCOPE_PRIVATE_KEY", ""),
		PublicKey:     r.str("GOSCOPE_PUBLIC_KEY", ""),
		Digest:        r.str("GOSCOPE_DIGEST", defaults.Keys.Digest),
		ApplicationID: r.str("GOSCOPE_APP_ID", ""),
		TokenTTL:      r.dur("GOSCOPE_TOKEN_TTL", defaults.Token.TTL),
		AdminTTL:      r.dur("GOSCOPE_ADMIN_TTL", defaults.Token.AdminTTL),
		DefaultScopes: r.scopes("GOSCOPE_DEFAULT_SCOPES", defaults.Token.DefaultScopes),
		RedisAddr:     r.str("GOSCOPE_REDIS_ADDR", ""),
		RedisPassword: r.str("GOSCOPE_REDIS_PASSWORD", ""),
		RedisDB:       r.int("GOSCOPE_REDIS_DB", 0),
		SessionTTL:    r.dur("GOSCOPE_SESSION_TTL", defaults.Session.TTL),
		RateLimit:     r.bool("GOSCOPE_RATE_LIMIT", defaults.RateLimit.Enabled),
		RateLimitMax:  r.int("GOSCOPE_RATE_LIMIT_MAX", defaults.RateLimit.MaxIssues),
		RateWindow:    r.dur("GOSCOPE_RATE_LIMIT_WINDOW", defaults.RateLimit.Window),
		Metrics:       r.bool("GOSCOPE_METRICS", true),
		Audit:         r.bool("GOSCOPE_AUDIT", false),
		OTLPEndpoint:  r.str("GOSCOPE_OTLP_ENDPOINT", ""),
		OTLPInterval:  r.dur("GOSCOPE_OTLP_INTERVAL", time.Minute),
	}
	if len(r.errs) > 0 {
		return Config{}, errors.Join(r.errs...)
	}
	if cfg.PrivateKey == "" {
		return Config{}, errors.New("GOSCOPE_PRIVATE_KEY is required")
	}
	if cfg.ApplicationID == "" {
		return Config{}, errors.New("GOSCOPE_APP_ID is required")
	}
	if cfg.OTLPEndpoint != "" && !cfg.Metrics {
		return Config{}, errors.New("GOSCOPE_OTLP_ENDPOINT requires GOSCOPE_METRICS")
	}
	if cfg.OTLPInterval <= 0 {
		return Config{}, errors.New("GOSCOPE_OTLP_INTERVAL must be positive")
	}
	return cfg, nil
}

// EngineConfig maps c onto an Engine configuration.
func (c Config) EngineConfig() goScope.Config {
	cfg := goScope.DefaultConfig()
	cfg.Keys.PrivateKey = c.PrivateKey
	cfg.Keys.PublicKey = c.PublicKey
	cfg.Keys.Digest = c.Digest
	cfg.Token.ApplicationID = c.ApplicationID
	cfg.Token.TTL = c.TokenTTL
	cfg.Token.AdminTTL = c.AdminTTL
	cfg.Token.DefaultScopes = append([]acl.Scope(nil), c.DefaultScopes...)
	cfg.Session.TTL = c.SessionTTL
	cfg.RateLimit.Enabled = c.RateLimit
	cfg.RateLimit.MaxIssues = c.RateLimitMax
	cfg.RateLimit.Window = c.RateWindow
	cfg.Metrics.Enabled = c.Metrics
	cfg.Metrics.EnableLatencyHistograms = c.Metrics
	cfg.Audit.Enabled = c.Audit
	return cfg
}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(k, def string) string {
	if v := strings.TrimSpace(r.getenv(k)); v != "" {
		return v
	}
	return def
}

func (r *reader) bool(k string, def bool) bool {
	v := strings.TrimSpace(r.getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}

func (r *reader) int(k string, def int) int {
	v := strings.TrimSpace(r.getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return i
}

// dur accepts a Go duration ("90m") or a bare number of seconds.
func (r *reader) dur(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(k))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}

func (r *reader) scopes(k string, def []acl.Scope) []acl.Scope {
	v := strings.TrimSpace(r.getenv(k))
	if v == "" {
		return append([]acl.Scope(nil), def...)
	}
	s, err := acl.ParseList(v)
	if err == nil && slices.Contains(s, acl.Admin) {
		err = goScope.ErrAdminReserved
	}
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return s
}
