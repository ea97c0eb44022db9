package goScope

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/jwt"
	"github.com/MrEthical07/goScope/keys"
)

var (
	testKeyOnce sync.Once
	testKeys    [2]*rsa.PrivateKey
	testKeyErr  error
)

func testPrivateKeys(t testing.TB) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	testKeyOnce.Do(func() {
		for i := range testKeys {
			testKeys[i], testKeyErr = rsa.GenerateKey(rand.Reader, 2048)
			if testKeyErr != nil {
				return
			}
		}
	})
	if testKeyErr != nil {
		t.Fatalf("generate rsa key: %v", testKeyErr)
	}
	return testKeys[0], testKeys[1]
}

func privateKeyPEM(t testing.TB, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func testConfig(t testing.TB) Config {
	t.Helper()
	key, _ := testPrivateKeys(t)
	cfg := DefaultConfig()
	cfg.Keys.PrivateKey = privateKeyPEM(t, key)
	cfg.Token.ApplicationID = "b1a2c3d4-app"
	return cfg
}

func buildTestEngine(t testing.TB, b *Builder) *Engine {
	t.Helper()
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestEngineLoginIssueVerify(t *testing.T) {
	ctx := context.Background()
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)))

	session, err := engine.Login(ctx, "jamie")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if identity, ok := engine.Resolve(ctx, "Bearer "+session); !ok || identity != "jamie" {
		t.Fatalf("resolve = %q, %v", identity, ok)
	}

	token, err := engine.IssueTokenForBearer(ctx, "Bearer "+session, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected three segments, got %q", token)
	}
	if !engine.Verify(token) {
		t.Fatal("issued token does not verify")
	}

	claims, err := engine.Inspect(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "jamie" {
		t.Fatalf("expected sub jamie, got %q", claims.Subject)
	}
	if claims.ApplicationID != "b1a2c3d4-app" {
		t.Fatalf("unexpected application id %q", claims.ApplicationID)
	}
	if claims.ExpiresAt-claims.IssuedAt != int64((2 * time.Hour).Seconds()) {
		t.Fatalf("unexpected lifetime %d", claims.ExpiresAt-claims.IssuedAt)
	}
	if len(claims.ACL.Paths) != 3 {
		t.Fatalf("expected 3 default paths, got %v", claims.ACL.Paths)
	}
	for _, s := range []acl.Scope{acl.Sessions, acl.Conversations, acl.Users} {
		if !claims.Allows(s) {
			t.Fatalf("default grant misses %s", s)
		}
	}
	if claims.Allows(acl.Admin) {
		t.Fatal("user token must not carry admin path")
	}
}

func TestEngineIssueExplicitScopes(t *testing.T) {
	ctx := context.Background()
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)))

	token, err := engine.IssueToken(ctx, "alice", []acl.Scope{acl.Push, acl.Media})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := engine.Inspect(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(claims.ACL.Paths) != 2 || !claims.Allows(acl.Push) || !claims.Allows(acl.Media) {
		t.Fatalf("unexpected paths %v", claims.ACL.Paths)
	}

	bad := []struct {
		name   string
		scopes []acl.Scope
		want   error
	}{
		{name: "admin mixed", scopes: []acl.Scope{acl.Admin, acl.Users}, want: acl.ErrAdminExclusive},
		{name: "admin only", scopes: []acl.Scope{acl.Admin}, want: ErrAdminReserved},
		{name: "duplicate", scopes: []acl.Scope{acl.Users, acl.Users}, want: acl.ErrDuplicateScope},
		{name: "unknown", scopes: []acl.Scope{acl.Scope(42)}, want: acl.ErrUnknownScope},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.IssueToken(ctx, "alice", tc.scopes); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := engine.IssueToken(ctx, "  ", nil); !errors.Is(err, jwt.ErrIdentityRequired) {
		t.Fatalf("expected jwt.ErrIdentityRequired, got %v", err)
	}
	if _, err := engine.IssueToken(ctx, "al\xffice", nil); !errors.Is(err, jwt.ErrInvalidIdentity) {
		t.Fatalf("expected jwt.ErrInvalidIdentity, got %v", err)
	}
}

func TestEngineBearerCannotObtainAdminScope(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	engine := buildTestEngine(t, New().WithConfig(cfg))

	session, err := engine.Login(ctx, "mallory")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token, err := engine.IssueTokenForBearer(ctx, "Bearer "+session, []acl.Scope{acl.Admin})
	if !errors.Is(err, ErrAdminReserved) || token != "" {
		t.Fatalf("IssueTokenForBearer(admin) = %q, %v; want ErrAdminReserved", token, err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricTokenIssued]; got != 0 {
		t.Fatalf("token issued counter = %d, want 0", got)
	}

	admin, err := engine.IssueAdminToken(ctx)
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	claims, err := engine.Inspect(admin)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "" {
		t.Fatalf("admin token carries subject %q", claims.Subject)
	}
}

func TestEngineRejectsUnresolvedBearer(t *testing.T) {
	ctx := context.Background()
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)))
	session, err := engine.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for _, header := range []string{"", "   ", session, "Bearer ", "Basic " + session, "Bearer not-a-session"} {
		token, err := engine.IssueTokenForBearer(ctx, header, nil)
		if !errors.Is(err, ErrUnauthorized) || token != "" {
			t.Fatalf("IssueTokenForBearer(%q) = %q, %v; want ErrUnauthorized", header, token, err)
		}
	}
}

func TestEngineAdminToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token.AdminTTL = 10 * time.Minute
	engine := buildTestEngine(t, New().WithConfig(cfg))

	token, err := engine.IssueAdminToken(context.Background())
	if err != nil {
		t.Fatalf("issue admin: %v", err)
	}
	claims, err := engine.Inspect(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "" {
		t.Fatalf("admin token must not carry a subject, got %q", claims.Subject)
	}
	if len(claims.ACL.Paths) != 1 || !claims.Allows(acl.Admin) {
		t.Fatalf("unexpected admin paths %v", claims.ACL.Paths)
	}
	if claims.ExpiresAt-claims.IssuedAt != 600 {
		t.Fatalf("unexpected admin lifetime %d", claims.ExpiresAt-claims.IssuedAt)
	}
}

func TestEngineSelfCheckFailure(t *testing.T) {
	_, other := testPrivateKeys(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	sink := NewChannelSink(16)

	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	cfg.Audit.Enabled = true
	engine := buildTestEngine(t, New().WithConfig(cfg).WithLogger(zap.New(core)).WithAuditSink(sink))

	pair, err := keys.NewKeyPair(other)
	if err != nil {
		t.Fatalf("key pair: %v", err)
	}
	foreign, err := jwt.NewManager(jwt.Config{ApplicationID: "b1a2c3d4-app", TTL: time.Hour, Keys: pair})
	if err != nil {
		t.Fatalf("foreign manager: %v", err)
	}
	engine.verifier = foreign

	token, err := engine.IssueToken(context.Background(), "alice", nil)
	if !errors.Is(err, ErrSelfCheckFailed) || token != "" {
		t.Fatalf("expected ErrSelfCheckFailed and no token, got %q, %v", token, err)
	}
	if _, err := engine.IssueAdminToken(context.Background()); !errors.Is(err, ErrSelfCheckFailed) {
		t.Fatalf("admin: expected ErrSelfCheckFailed, got %v", err)
	}

	if got := engine.MetricsSnapshot().Counters[MetricSelfCheckFailure]; got != 2 {
		t.Fatalf("expected 2 self-check failures, got %d", got)
	}
	if got := engine.MetricsSnapshot().Counters[MetricTokenIssued]; got != 0 {
		t.Fatalf("expected no issued tokens, got %d", got)
	}
	if logs.FilterMessage("issued token failed self-check").Len() != 2 {
		t.Fatalf("expected self-check errors to be logged, got %v", logs.All())
	}

	event := <-sink.Events()
	if event.EventType != auditEventSelfCheckFailure || event.Success || event.Error != string(auditErrSelfCheckFailed) {
		t.Fatalf("unexpected audit event %+v", event)
	}
}

func TestEngineSHA1Digest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Keys.Digest = "sha1"
	engine := buildTestEngine(t, New().WithConfig(cfg))

	if engine.Algorithm() != "RS1" {
		t.Fatalf("expected RS1, got %q", engine.Algorithm())
	}
	token, err := engine.IssueToken(context.Background(), "alice", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !engine.Verify(token) {
		t.Fatal("sha1 token does not verify")
	}

	sha256Engine := buildTestEngine(t, New().WithConfig(testConfig(t)))
	if sha256Engine.Verify(token) {
		t.Fatal("RS256 engine accepted an RS1 token")
	}
}

func TestEngineClock(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)).WithClock(func() time.Time { return fixed }))

	token, err := engine.IssueToken(context.Background(), "alice", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := engine.Inspect(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.IssuedAt != fixed.Unix() || claims.ExpiresAt != fixed.Unix()+7200 {
		t.Fatalf("unexpected iat/exp %d/%d", claims.IssuedAt, claims.ExpiresAt)
	}
	if !claims.Expired(fixed.Add(3 * time.Hour)) {
		t.Fatal("expected token to be expired after 3h")
	}
}

func TestEngineRedisSessionsShareAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	a := buildTestEngine(t, New().WithConfig(testConfig(t)).WithRedis(rdb))
	b := buildTestEngine(t, New().WithConfig(testConfig(t)).WithRedis(rdb))

	session, err := a.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !mr.Exists("gs:sess:" + session) {
		t.Fatalf("expected session key in redis, have %v", mr.Keys())
	}

	token, err := b.IssueTokenForBearer(ctx, "Bearer "+session, nil)
	if err != nil {
		t.Fatalf("issue on second instance: %v", err)
	}
	if !a.Verify(token) {
		t.Fatal("instances sharing a key must verify each other's tokens")
	}
}

func TestEngineRedisSessionTTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	cfg := testConfig(t)
	cfg.Session.TTL = time.Minute
	cfg.Session.RedisPrefix = "svc"
	engine := buildTestEngine(t, New().WithConfig(cfg).WithRedis(rdb))

	session, err := engine.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := mr.TTL("svc:" + session); got != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", got)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := engine.IssueTokenForBearer(ctx, "Bearer "+session, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected expired session to be unauthorized, got %v", err)
	}
}

func TestEngineRedisDownIsUnauthorized(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)).WithRedis(rdb))

	session, err := engine.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	mr.Close()

	if _, err := engine.IssueTokenForBearer(ctx, "Bearer "+session, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized with redis down, got %v", err)
	}
	if _, err := engine.Login(ctx, "bob"); err == nil {
		t.Fatal("expected login to fail with redis down")
	}
}

func TestBuildKeyCacheLoadsOnce(t *testing.T) {
	key, _ := testPrivateKeys(t)
	path := filepath.Join(t.TempDir(), "signing.pem")
	if err := os.WriteFile(path, []byte(privateKeyPEM(t, key)), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	var cache keys.Cache
	cfg := testConfig(t)
	cfg.Keys.PrivateKey = path

	first := buildTestEngine(t, New().WithConfig(cfg).WithKeyCache(&cache))
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove key: %v", err)
	}
	second := buildTestEngine(t, New().WithConfig(cfg).WithKeyCache(&cache))

	token, err := first.IssueToken(context.Background(), "alice", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !second.Verify(token) {
		t.Fatal("engines sharing a key cache must share the key pair")
	}

	if _, err := New().WithConfig(cfg).Build(); !errors.Is(err, keys.ErrKeyFormat) {
		t.Fatalf("uncached build should re-read the removed file, got %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	key, other := testPrivateKeys(t)

	otherPub, err := x509.MarshalPKIXPublicKey(&other.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	mismatchedPub := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: otherPub}))
	ownPub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	matchingPub := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: ownPub}))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "no key source", mutate: func(c *Config) { c.Keys.PrivateKey = "" }, want: ErrKeySourceRequired},
		{name: "garbage key", mutate: func(c *Config) { c.Keys.PrivateKey = "not a key" }, want: keys.ErrKeyFormat},
		{name: "mismatched public key", mutate: func(c *Config) { c.Keys.PublicKey = mismatchedPub }, want: keys.ErrKeyAlgorithm},
		{name: "unknown digest", mutate: func(c *Config) { c.Keys.Digest = "md5" }, want: keys.ErrUnsupportedDigest},
		{name: "matching public key", mutate: func(c *Config) { c.Keys.PublicKey = matchingPub }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			tc.mutate(&cfg)
			_, err := New().WithConfig(cfg).Build()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	b := New().WithConfig(testConfig(t))
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("expected ErrBuilderUsed, got %v", err)
	}
}

func TestEnginePublicKeyPEM(t *testing.T) {
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)))

	pemBytes, err := engine.PublicKeyPEM()
	if err != nil {
		t.Fatalf("public key pem: %v", err)
	}
	pub, err := keys.ParsePublicKey(pemBytes)
	if err != nil {
		t.Fatalf("parse public key: %v", err)
	}
	key, _ := testPrivateKeys(t)
	if !pub.Equal(&key.PublicKey) {
		t.Fatal("published key does not match signing key")
	}
}

func TestNilEngine(t *testing.T) {
	var e *Engine
	ctx := context.Background()

	if _, err := e.Login(ctx, "alice"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("login: %v", err)
	}
	if _, ok := e.Resolve(ctx, "Bearer x"); ok {
		t.Fatal("nil engine resolved")
	}
	if _, err := e.IssueToken(ctx, "alice", nil); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("issue: %v", err)
	}
	if e.Verify("a.b.c") {
		t.Fatal("nil engine verified")
	}
	if snap := e.MetricsSnapshot(); snap.Counters == nil {
		t.Fatal("expected non-nil counters map")
	}
	e.Close()
}

func TestEngineConcurrentIssue(t *testing.T) {
	ctx := context.Background()
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)))

	const workers = 16
	sessions := make([]string, workers)
	for i := range sessions {
		s, err := engine.Login(ctx, "user-"+string(rune('a'+i)))
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		sessions[i] = s
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{})
	)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				token, err := engine.IssueTokenForBearer(ctx, "Bearer "+sessions[i], nil)
				if err != nil {
					errs <- err
					return
				}
				claims, err := engine.Inspect(token)
				if err != nil {
					errs <- err
					return
				}
				if claims.Subject != "user-"+string(rune('a'+i)) {
					errs <- errors.New("token issued for wrong identity")
					return
				}
				mu.Lock()
				ids[claims.ID] = struct{}{}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if len(ids) != workers*5 {
		t.Fatalf("expected %d unique jti, got %d", workers*5, len(ids))
	}
}

func TestEngineIssueRateLimit(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	cfg.RateLimit = RateLimitConfig{Enabled: true, MaxIssues: 2, Window: time.Minute, RedisPrefix: "rl"}
	engine := buildTestEngine(t, New().WithConfig(cfg).WithRedis(rdb))

	for i := 0; i < 2; i++ {
		if _, err := engine.IssueToken(ctx, "alice", nil); err != nil {
			t.Fatalf("issue %d: %v", i+1, err)
		}
	}
	if _, err := engine.IssueToken(ctx, "alice", nil); !errors.Is(err, ErrIssueRateLimited) {
		t.Fatalf("expected ErrIssueRateLimited, got %v", err)
	}
	if _, err := engine.IssueToken(ctx, "bob", nil); err != nil {
		t.Fatalf("other identity throttled: %v", err)
	}
	if _, err := engine.IssueAdminToken(ctx); err != nil {
		t.Fatalf("admin tokens are not throttled: %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricIssueRateLimited]; got != 1 {
		t.Fatalf("expected 1 rate-limited issue, got %d", got)
	}

	// Rejected requests are not charged.
	if _, err := engine.IssueToken(ctx, "carol", []acl.Scope{acl.Admin, acl.Users}); err == nil {
		t.Fatal("expected invalid scopes to fail")
	}
	if mr.Exists("rl:carol") {
		t.Fatal("invalid request charged the throttle")
	}

	mr.FastForward(2 * time.Minute)
	if _, err := engine.IssueToken(ctx, "alice", nil); err != nil {
		t.Fatalf("expected fresh window, got %v", err)
	}

	mr.Close()
	if _, err := engine.IssueToken(ctx, "alice", nil); !errors.Is(err, ErrRateLimiterUnavailable) {
		t.Fatalf("expected ErrRateLimiterUnavailable, got %v", err)
	}
}

func TestEngineResetIssueLimit(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	cfg := testConfig(t)
	cfg.RateLimit = RateLimitConfig{Enabled: true, MaxIssues: 1, Window: time.Hour, RedisPrefix: "rl"}
	engine := buildTestEngine(t, New().WithConfig(cfg).WithRedis(rdb))

	if _, err := engine.IssueToken(ctx, "alice", nil); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := engine.IssueToken(ctx, "alice", nil); !errors.Is(err, ErrIssueRateLimited) {
		t.Fatalf("expected ErrIssueRateLimited, got %v", err)
	}
	if n, err := engine.IssueAttempts(ctx, "alice"); err != nil || n != 2 {
		t.Fatalf("IssueAttempts = %d, %v; want 2", n, err)
	}

	if err := engine.ResetIssueLimit(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, err := engine.IssueAttempts(ctx, "alice"); err != nil || n != 0 {
		t.Fatalf("IssueAttempts after reset = %d, %v; want 0", n, err)
	}
	if _, err := engine.IssueToken(ctx, "alice", nil); err != nil {
		t.Fatalf("issue after reset: %v", err)
	}

	mr.Close()
	if err := engine.ResetIssueLimit(ctx, "alice"); !errors.Is(err, ErrRateLimiterUnavailable) {
		t.Fatalf("expected ErrRateLimiterUnavailable, got %v", err)
	}
	if _, err := engine.IssueAttempts(ctx, "alice"); !errors.Is(err, ErrRateLimiterUnavailable) {
		t.Fatalf("expected ErrRateLimiterUnavailable, got %v", err)
	}
}

func TestEngineIssueLimitDisabled(t *testing.T) {
	engine := buildTestEngine(t, New().WithConfig(testConfig(t)))
	if n, err := engine.IssueAttempts(context.Background(), "alice"); err != nil || n != 0 {
		t.Fatalf("IssueAttempts = %d, %v; want 0, nil", n, err)
	}
	if err := engine.ResetIssueLimit(context.Background(), "alice"); err != nil {
		t.Fatalf("reset with throttle disabled: %v", err)
	}
}

func TestBuildRateLimitRequiresRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected rate limit without redis to fail")
	}
}
