package goScope

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goScope/internal/rate"
	"github.com/MrEthical07/goScope/jwt"
	"github.com/MrEthical07/goScope/keys"
	"github.com/MrEthical07/goScope/session"
)

// Builder assembles an [Engine].
//
// Builder instances are intended to be configured during initialization and used for a single Build.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.Store
	logger *zap.Logger

	auditSink AuditSink
	keyPair   *keys.KeyPair
	keyCache  *keys.Cache
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis stores sessions in Redis instead of process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore overrides the session backend. It takes precedence over WithRedis.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the sink used when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithKeyPair supplies an already loaded key pair; Config.Keys.PrivateKey and
// Config.Keys.PublicKey are then ignored.
func (b *Builder) WithKeyPair(pair *keys.KeyPair) *Builder {
	b.keyPair = pair
	return b
}

// WithKeyCache loads the private key through cache so that engines built from the same
// source share one key pair and the source is read once per process.
func (b *Builder) WithKeyCache(cache *keys.Cache) *Builder {
	b.keyCache = cache
	return b
}

// WithClock overrides the issue-time clock.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, loads the key pair, and wires the engine.
// A key that cannot be loaded aborts Build.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	digest, err := keys.ParseDigest(cfg.Keys.Digest)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("RateLimit requires redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- KEY MATERIAL --------
	pair, err := b.loadKeyPair(cfg.Keys)
	if err != nil {
		return nil, err
	}

	// -------- TOKEN MANAGER --------
	tokens, err := jwt.NewManager(jwt.Config{
		ApplicationID: cfg.Token.ApplicationID,
		TTL:           cfg.Token.TTL,
		Digest:        digest,
		Keys:          pair,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	store := b.store
	storeKind := "custom"
	if store == nil {
		if b.redis != nil {
			store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
			storeKind = "redis"
		} else {
			store = session.NewMemoryStore()
			storeKind = "memory"
		}
	}

	engine := &Engine{
		config:   cloneConfig(cfg),
		keys:     pair,
		tokens:   tokens,
		verifier: tokens,
		sessions: session.NewManager(store, session.Config{TTL: cfg.Session.TTL, Logger: logger}),
		metrics:  NewMetrics(cfg.Metrics),
		logger:   logger,
		now:      now,
	}
	if cfg.RateLimit.Enabled {
		engine.limiter = rate.New(b.redis, rate.Config{
			MaxAttempts: cfg.RateLimit.MaxIssues,
			Window:      cfg.RateLimit.Window,
			Prefix:      cfg.RateLimit.RedisPrefix,
		})
	}
	if cfg.Audit.Enabled {
		engine.audit = b.auditSink
		if engine.audit == nil {
			engine.audit = NoOpSink{}
		}
	}

	logger.Info("engine built",
		zap.String("alg", tokens.Algorithm()),
		zap.String("application_id", cfg.Token.ApplicationID),
		zap.Duration("token_ttl", cfg.Token.TTL),
		zap.String("session_store", storeKind),
	)

	b.built = true

	return engine, nil
}

func (b *Builder) loadKeyPair(cfg KeysConfig) (*keys.KeyPair, error) {
	if b.keyPair != nil {
		return b.keyPair, nil
	}
	if cfg.PrivateKey == "" {
		return nil, ErrKeySourceRequired
	}

	var (
		pair *keys.KeyPair
		err  error
	)
	if b.keyCache != nil {
		pair, err = b.keyCache.Load(cfg.PrivateKey)
	} else {
		pair, err = keys.LoadKeyPair(cfg.PrivateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	if cfg.PublicKey == "" {
		return pair, nil
	}
	pub, err := keys.LoadPublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("load public key: %w", err)
	}
	return keys.NewKeyPairWithPublic(pair.Private(), pub)
}
