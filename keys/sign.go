package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"strings"
)

// Digest selects the hash used with RSASSA-PKCS1-v1_5.
//
// The digest is part of the wire contract with the verifying peer: the token header
// names it through [Digest.Algorithm] and both sides must agree.
type Digest string

const (
	// SHA256 signs with SHA-256 and is announced as "RS256".
	SHA256 Digest = "sha256"
	// SHA1 signs with SHA-1 and is announced as "RS1". Only for peers pinned to SHA1withRSA.
	SHA1 Digest = "sha1"
)

// ParseDigest accepts a digest or algorithm name, case-insensitively.
// An empty name selects [SHA256].
func ParseDigest(name string) (Digest, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256", "sha-256", "rs256":
		return SHA256, nil
	case "sha1", "sha-1", "rs1":
		return SHA1, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDigest, name)
	}
}

// Algorithm returns the header "alg" value announced for d.
func (d Digest) Algorithm() string {
	switch d {
	case SHA256:
		return "RS256"
	case SHA1:
		return "RS1"
	default:
		return ""
	}
}

func (d Digest) hash() (crypto.Hash, error) {
	switch d {
	case SHA256:
		return crypto.SHA256, nil
	case SHA1:
		return crypto.SHA1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDigest, string(d))
	}
}

func (d Digest) sum(msg []byte) ([]byte, crypto.Hash, error) {
	h, err := d.hash()
	if err != nil {
		return nil, 0, err
	}
	switch h {
	case crypto.SHA1:
		s := sha1.Sum(msg)
		return s[:], h, nil
	default:
		s := sha256.Sum256(msg)
		return s[:], h, nil
	}
}

// Sign returns the RSASSA-PKCS1-v1_5 signature of msg under d.
func Sign(priv *rsa.PrivateKey, d Digest, msg []byte) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrSigning)
	}
	sum, h, err := d.sum(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, h, sum)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return sig, nil
}

// Verify reports whether sig is a valid signature of msg under d.
//
// A mismatched signature yields (false, nil). An error is returned only for a nil or
// structurally invalid public key or an unknown digest.
func Verify(pub *rsa.PublicKey, d Digest, msg, sig []byte) (bool, error) {
	if pub == nil || pub.N == nil || pub.N.Sign() <= 0 || pub.E < 2 {
		return false, fmt.Errorf("%w: invalid public key", ErrKeyAlgorithm)
	}
	sum, h, err := d.sum(msg)
	if err != nil {
		return false, err
	}
	if err := rsa.VerifyPKCS1v15(pub, h, sum, sig); err != nil {
		return false, nil
	}
	return true, nil
}
