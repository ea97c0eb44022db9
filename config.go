package goScope

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/keys"
)

// Config is the complete Engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Keys      KeysConfig
	Token     TokenConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Audit     AuditConfig
}

/*
====================================
KEYS CONFIG
====================================
*/

// KeysConfig locates the signing key.
type KeysConfig struct {
	// PrivateKey is a PEM file path, an inline PEM block, or a base64 PKCS#8 DER blob.
	PrivateKey string
	// PublicKey optionally pins the public half; it must match PrivateKey.
	PublicKey string
	// Digest is "sha256" (default, RS256) or "sha1" (RS1).
	Digest string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls issued tokens.
type TokenConfig struct {
	ApplicationID string
	TTL           time.Duration
	AdminTTL      time.Duration
	// DefaultScopes is the grant used when a caller requests no scopes.
	DefaultScopes []acl.Scope
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the session token store.
type SessionConfig struct {
	// RedisPrefix namespaces session keys when a Redis client is supplied.
	RedisPrefix string
	// TTL expires Redis-backed sessions. Zero keeps them forever. The in-memory
	// store ignores it.
	TTL time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig throttles user token issuance per identity. It needs a Redis client.
type RateLimitConfig struct {
	Enabled   bool
	MaxIssues int
	Window    time.Duration
	// RedisPrefix namespaces limiter keys.
	RedisPrefix string
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// AuditConfig toggles audit event delivery.
type AuditConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration with every field but the key source and
// application id filled in.
func DefaultConfig() Config {
	return Config{
		Keys: KeysConfig{
			Digest: string(keys.SHA256),
		},
		Token: TokenConfig{
			TTL:           2 * time.Hour,
			AdminTTL:      2 * time.Hour,
			DefaultScopes: acl.DefaultUserScopes(),
		},
		Session: SessionConfig{
			RedisPrefix: "gs:sess",
			TTL:         0,
		},
		RateLimit: RateLimitConfig{
			Enabled:     false,
			MaxIssues:   60,
			Window:      time.Minute,
			RedisPrefix: "gs:rl",
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Audit: AuditConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Token.DefaultScopes != nil {
		out.Token.DefaultScopes = append([]acl.Scope(nil), cfg.Token.DefaultScopes...)
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks field ranges. It does not load the key; Build does.
func (c *Config) Validate() error {
	// Keys
	if _, err := keys.ParseDigest(c.Keys.Digest); err != nil {
		return err
	}

	// Token
	if strings.TrimSpace(c.Token.ApplicationID) == "" {
		return errors.New("Token ApplicationID must be set")
	}
	if c.Token.TTL < time.Second {
		return errors.New("Token TTL must be >= 1s")
	}
	if c.Token.AdminTTL < time.Second {
		return errors.New("Token AdminTTL must be >= 1s")
	}
	if !utf8.ValidString(c.Token.ApplicationID) {
		return errors.New("Token ApplicationID must be valid UTF-8")
	}
	if err := acl.Validate(c.Token.DefaultScopes); err != nil {
		return fmt.Errorf("Token DefaultScopes: %w", err)
	}
	if slices.Contains(c.Token.DefaultScopes, acl.Admin) {
		return fmt.Errorf("Token DefaultScopes: %w", ErrAdminReserved)
	}

	// Session
	if c.Session.TTL < 0 {
		return errors.New("Session TTL must be >= 0")
	}
	if strings.ContainsAny(c.Session.RedisPrefix, " \t\r\n") {
		return errors.New("Session RedisPrefix must not contain whitespace")
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxIssues <= 0 {
			return errors.New("RateLimit MaxIssues must be > 0")
		}
		if c.RateLimit.Window < time.Second {
			return errors.New("RateLimit Window must be >= 1s")
		}
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
