package keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
)

const redacted = "keys.KeyPair{[REDACTED]}"

// KeyPair holds an RSA private key and its public half.
//
// KeyPair instances are immutable after construction and safe for concurrent use.
type KeyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewKeyPair derives the public half of priv and returns the pair.
func NewKeyPair(priv *rsa.PrivateKey) (*KeyPair, error) {
	pub, err := DerivePublicKey(priv)
	if err != nil {
		return nil, err
	}
	return &KeyPair{private: priv, public: pub}, nil
}

// NewKeyPairWithPublic pairs priv with an explicitly configured public key,
// rejecting a public key that does not belong to priv.
func NewKeyPairWithPublic(priv *rsa.PrivateKey, pub *rsa.PublicKey) (*KeyPair, error) {
	if pub == nil {
		return NewKeyPair(priv)
	}
	derived, err := DerivePublicKey(priv)
	if err != nil {
		return nil, err
	}
	if !derived.Equal(pub) {
		return nil, fmt.Errorf("%w: public key does not match private key", ErrKeyAlgorithm)
	}
	return &KeyPair{private: priv, public: pub}, nil
}

// LoadKeyPair loads a private key from source and derives its public half.
func LoadKeyPair(source string) (*KeyPair, error) {
	priv, err := LoadPrivateKey(source)
	if err != nil {
		return nil, err
	}
	return NewKeyPair(priv)
}

// Private returns the private key.
func (k *KeyPair) Private() *rsa.PrivateKey { return k.private }

// Public returns the public key.
func (k *KeyPair) Public() *rsa.PublicKey { return k.public }

// PublicKeyPEM encodes the public key as a PKIX "PUBLIC KEY" PEM block, the form a
// verifying peer is configured with.
func (k *KeyPair) PublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(k.public)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func (k *KeyPair) String() string   { return redacted }
func (k *KeyPair) GoString() string { return redacted }

// ErrCacheSourceMismatch is returned when a loaded [Cache] is asked for a different source.
var ErrCacheSourceMismatch = errors.New("key cache already loaded from another source")

// Cache loads a key pair once per process and hands out the same immutable pair
// afterwards. A failed load is remembered; there is no reload.
type Cache struct {
	once   sync.Once
	source string
	pair   *KeyPair
	err    error
}

// Load returns the cached pair, loading it from source on first use.
func (c *Cache) Load(source string) (*KeyPair, error) {
	c.once.Do(func() {
		c.source = source
		c.pair, c.err = LoadKeyPair(source)
	})
	if c.err != nil {
		return nil, c.err
	}
	if source != c.source {
		return nil, ErrCacheSourceMismatch
	}
	return c.pair, nil
}
