package session

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrIdentityRequired is returned by Login for a blank identity.
	ErrIdentityRequired = errors.New("identity is required")
	// ErrInvalidIdentity is returned by Login for an identity that is not valid UTF-8.
	ErrInvalidIdentity = errors.New("identity must be valid UTF-8")
)

const bearerScheme = "Bearer"

// Config controls a [Manager].
type Config struct {
	// TTL is handed to the store on Save. Zero keeps mappings until process exit
	// (memory) or forever (Redis).
	TTL    time.Duration
	Logger *zap.Logger
}

// Manager issues session tokens at login and resolves bearer headers to identities.
//
// Manager is safe for concurrent use when its Store is.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager wraps store. A nil store selects a fresh [MemoryStore].
func NewManager(store Store, cfg Config) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, ttl: cfg.TTL, logger: logger.Named("session")}
}

// Login records identity under a fresh session token of the form "{identity}-{uuid}"
// and returns the token.
func (m *Manager) Login(ctx context.Context, identity string) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", ErrIdentityRequired
	}
	if !utf8.ValidString(identity) {
		return "", ErrInvalidIdentity
	}
	token := identity + "-" + uuid.NewString()
	if err := m.store.Save(ctx, token, identity, m.ttl); err != nil {
		m.logger.Error("session save failed", zap.String("identity", identity), zap.Error(err))
		return "", err
	}
	m.logger.Debug("session created", zap.String("identity", identity))
	return token, nil
}

// Resolve maps a raw Authorization header value ("Bearer <token>") to the identity
// recorded at login. Blank, malformed, unknown, and unresolvable headers all yield
// ("", false); store failures are logged, never returned.
func (m *Manager) Resolve(ctx context.Context, header string) (string, bool) {
	token, ok := ParseBearer(header)
	if !ok {
		return "", false
	}
	identity, found, err := m.store.Lookup(ctx, token)
	if err != nil {
		m.logger.Warn("session lookup failed", zap.Error(err))
		return "", false
	}
	if !found {
		return "", false
	}
	return identity, true
}

// ParseBearer splits a header value into scheme and token at the first space. The
// scheme must be "Bearer" (any case) and the token non-empty.
func ParseBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || token == "" || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	return token, true
}
