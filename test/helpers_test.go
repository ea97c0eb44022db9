//go:build integration
// +build integration

package test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goScope "github.com/MrEthical07/goScope"
)

var (
	keyOnce sync.Once
	keyFile string
	keyPriv *rsa.PrivateKey
	keyErr  error
)

// signingKeyFile writes one PKCS#8 PEM key per test binary and returns its path.
func signingKeyFile(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		keyPriv, keyErr = rsa.GenerateKey(rand.Reader, 2048)
		if keyErr != nil {
			return
		}
		der, err := x509.MarshalPKCS8PrivateKey(keyPriv)
		if err != nil {
			keyErr = err
			return
		}
		dir, err := os.MkdirTemp("", "goscope-integration")
		if err != nil {
			keyErr = err
			return
		}
		keyFile = filepath.Join(dir, "signing.pem")
		keyErr = os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600)
	})
	if keyErr != nil {
		t.Fatalf("signing key: %v", keyErr)
	}
	return keyFile, keyPriv
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newEngine(t *testing.T, rdb redis.UniversalClient, mutate func(*goScope.Config)) *goScope.Engine {
	t.Helper()
	path, _ := signingKeyFile(t)
	cfg := goScope.DefaultConfig()
	cfg.Keys.PrivateKey = path
	cfg.Token.ApplicationID = "integration-app"
	if mutate != nil {
		mutate(&cfg)
	}
	b := goScope.New().WithConfig(cfg).WithMetricsEnabled(true)
	if rdb != nil {
		b = b.WithRedis(rdb)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
