package goScope

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/internal/rate"
	"github.com/MrEthical07/goScope/jwt"
	"github.com/MrEthical07/goScope/keys"
	"github.com/MrEthical07/goScope/session"
)

// Engine ties sessions, key material, and token issuance together.
//
// Engine instances are immutable after Build and safe for concurrent use.
type Engine struct {
	config   Config
	keys     *keys.KeyPair
	tokens   *jwt.Manager
	verifier *jwt.Manager
	sessions *session.Manager
	limiter  *rate.Limiter
	audit    AuditSink
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Close releases engine resources. The engine owns no goroutines or connections, so
// Close only flushes the logger; a caller-supplied Redis client stays open.
func (e *Engine) Close() {
	if e == nil || e.logger == nil {
		return
	}
	_ = e.logger.Sync()
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// Algorithm returns the "alg" header value of issued tokens.
func (e *Engine) Algorithm() string {
	if e == nil || e.tokens == nil {
		return ""
	}
	return e.tokens.Algorithm()
}

// AuditDropped reports events dropped by the audit sink, when the sink counts them.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	if d, ok := e.audit.(interface{ Dropped() uint64 }); ok {
		return d.Dropped()
	}
	return 0
}

// MetricsSnapshot returns a copy of the engine counters. Disabled metrics yield empty maps.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login records identity and returns a fresh session token of the form
// "{identity}-{uuid}". It stands in for an upstream identity provider; the caller
// is trusted to have authenticated identity already.
func (e *Engine) Login(ctx context.Context, identity string) (string, error) {
	if e == nil || e.sessions == nil {
		return "", ErrEngineNotReady
	}
	token, err := e.sessions.Login(ctx, identity)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, "", err, nil)
		return "", err
	}
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, identity, "", nil, nil)
	return token, nil
}

// Resolve maps a raw Authorization header value to the identity recorded at login.
// Anything that does not resolve yields ("", false).
func (e *Engine) Resolve(ctx context.Context, header string) (string, bool) {
	if e == nil || e.sessions == nil {
		return "", false
	}
	identity, ok := e.sessions.Resolve(ctx, header)
	if !ok {
		e.metricInc(MetricResolveFailure)
		e.emitAudit(ctx, auditEventResolveFailure, false, "", "", ErrUnauthorized, nil)
		return "", false
	}
	e.metricInc(MetricResolveSuccess)
	return identity, true
}

// IssueToken mints a token for identity carrying scopes. An empty scope list selects
// Config.Token.DefaultScopes. The token is verified under the engine's public key
// before it is returned; a token that fails that check is never handed out.
func (e *Engine) IssueToken(ctx context.Context, identity string, scopes []acl.Scope) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}
	if len(scopes) == 0 {
		scopes = e.config.Token.DefaultScopes
	}

	if err := validateRequest(identity, scopes); err != nil {
		e.issueFailed(ctx, identity, scopes, err)
		return "", err
	}
	if err := e.throttle(ctx, identity); err != nil {
		e.issueFailed(ctx, identity, scopes, err)
		return "", err
	}

	start := time.Now()
	token, err := e.tokens.Issue(identity, scopes)
	if err != nil {
		e.issueFailed(ctx, identity, scopes, err)
		return "", err
	}
	claims, err := e.selfCheck(ctx, identity, token)
	if err != nil {
		return "", err
	}
	e.observeIssue(start)

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, identity, claims.ID, nil, scopeMetadata(scopes))
	e.logger.Debug("token issued",
		zap.String("identity", identity),
		zap.String("jti", claims.ID),
		zap.Int("scopes", len(scopes)),
	)
	return token, nil
}

// IssueTokenForBearer resolves an Authorization header to an identity and issues a
// token for it. An unresolved header yields [ErrUnauthorized].
func (e *Engine) IssueTokenForBearer(ctx context.Context, header string, scopes []acl.Scope) (string, error) {
	if e == nil || e.sessions == nil {
		return "", ErrEngineNotReady
	}
	identity, ok := e.Resolve(ctx, header)
	if !ok {
		return "", ErrUnauthorized
	}
	return e.IssueToken(ctx, identity, scopes)
}

// IssueAdminToken mints a subject-less token carrying only [acl.Admin], valid for
// Config.Token.AdminTTL.
func (e *Engine) IssueAdminToken(ctx context.Context) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}

	start := time.Now()
	token, err := e.tokens.IssueAdmin(e.config.Token.AdminTTL)
	if err != nil {
		e.issueFailed(ctx, "", []acl.Scope{acl.Admin}, err)
		return "", err
	}
	claims, err := e.selfCheck(ctx, "", token)
	if err != nil {
		return "", err
	}
	e.observeIssue(start)

	e.metricInc(MetricAdminTokenIssued)
	e.emitAudit(ctx, auditEventAdminTokenIssued, true, "", claims.ID, nil, nil)
	e.logger.Info("admin token issued", zap.String("jti", claims.ID))
	return token, nil
}

// Verify reports whether token carries a valid signature under the engine's public key.
// Malformed input yields false.
func (e *Engine) Verify(token string) bool {
	if e == nil || e.verifier == nil {
		return false
	}
	if e.verifier.Verify(token) {
		e.metricInc(MetricVerifySuccess)
		return true
	}
	e.metricInc(MetricVerifyFailure)
	return false
}

// Inspect verifies token and returns its decoded claims.
func (e *Engine) Inspect(token string) (*jwt.Claims, error) {
	if e == nil || e.verifier == nil {
		return nil, ErrEngineNotReady
	}
	return e.verifier.Inspect(token)
}

// PublicKeyPEM returns the verification key as a PKIX "PUBLIC KEY" PEM block, for
// distribution to downstream verifiers.
func (e *Engine) PublicKeyPEM() ([]byte, error) {
	if e == nil || e.keys == nil {
		return nil, ErrEngineNotReady
	}
	return e.keys.PublicKeyPEM()
}

// validateRequest gates the user issuance path. Admin is only minted by
// IssueAdminToken.
func validateRequest(identity string, scopes []acl.Scope) error {
	if strings.TrimSpace(identity) == "" {
		return jwt.ErrIdentityRequired
	}
	if !utf8.ValidString(identity) {
		return jwt.ErrInvalidIdentity
	}
	if err := acl.Validate(scopes); err != nil {
		return err
	}
	if slices.Contains(scopes, acl.Admin) {
		return ErrAdminReserved
	}
	return nil
}

// IssueAttempts returns how many user tokens identity has requested in the current
// throttle window. It is zero when the throttle is disabled.
func (e *Engine) IssueAttempts(ctx context.Context, identity string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	if e.limiter == nil {
		return 0, nil
	}
	n, err := e.limiter.Attempts(ctx, identity)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRateLimiterUnavailable, err)
	}
	return n, nil
}

// ResetIssueLimit clears the throttle window of identity, for operators lifting a
// lockout. It is a no-op when the throttle is disabled.
func (e *Engine) ResetIssueLimit(ctx context.Context, identity string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.limiter == nil {
		return nil
	}
	if err := e.limiter.Reset(ctx, identity); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimiterUnavailable, err)
	}
	e.logger.Info("issue limit reset", zap.String("identity", identity))
	return nil
}

// throttle charges one issuance to identity when the rate limiter is enabled. A limiter
// that cannot reach Redis refuses the request.
func (e *Engine) throttle(ctx context.Context, identity string) error {
	if e.limiter == nil {
		return nil
	}
	err := e.limiter.Allow(ctx, identity)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		e.metricInc(MetricIssueRateLimited)
		return ErrIssueRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrRateLimiterUnavailable, err)
	}
}

func (e *Engine) selfCheck(ctx context.Context, identity, token string) (*jwt.Claims, error) {
	claims, err := e.verifier.Inspect(token)
	if err == nil {
		return claims, nil
	}
	e.metricInc(MetricSelfCheckFailure)
	e.emitAudit(ctx, auditEventSelfCheckFailure, false, identity, "", ErrSelfCheckFailed, nil)
	e.logger.Error("issued token failed self-check",
		zap.String("identity", identity),
		zap.String("alg", e.tokens.Algorithm()),
		zap.Error(err),
	)
	return nil, fmt.Errorf("%w: %v", ErrSelfCheckFailed, err)
}

func (e *Engine) issueFailed(ctx context.Context, identity string, scopes []acl.Scope, err error) {
	e.metricInc(MetricIssueFailure)
	e.emitAudit(ctx, auditEventTokenIssueFailure, false, identity, "", err, scopeMetadata(scopes))

	if errors.Is(err, keys.ErrSigning) {
		e.logger.Error("token signing failed", zap.String("identity", identity), zap.Error(err))
		return
	}
	e.logger.Debug("token request rejected", zap.String("identity", identity), zap.Error(err))
}
