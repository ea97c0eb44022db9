package keys

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	gjwt "github.com/golang-jwt/jwt/v5"
)

const pemMarker = "-----BEGIN"

// LoadPrivateKey resolves source to an RSA private key.
//
// source may be a PEM file path, inline PEM text, or a base64 PKCS#8 DER blob.
// Undecodable input fails with [ErrKeyFormat]; non-RSA material with [ErrKeyAlgorithm].
func LoadPrivateKey(source string) (*rsa.PrivateKey, error) {
	data, err := readSource(source)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(data)
}

// LoadPublicKey resolves source to an RSA public key (PKIX PEM or base64 DER).
func LoadPublicKey(source string) (*rsa.PublicKey, error) {
	data, err := readSource(source)
	if err != nil {
		return nil, err
	}
	return ParsePublicKey(data)
}

// ParsePrivateKey parses PEM text or a base64 PKCS#8 DER blob.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	if bytes.Contains(data, []byte(pemMarker)) {
		key, err := gjwt.ParseRSAPrivateKeyFromPEM(data)
		if err != nil {
			if errors.Is(err, gjwt.ErrNotRSAPrivateKey) {
				return nil, fmt.Errorf("%w: pem block holds a non-RSA private key", ErrKeyAlgorithm)
			}
			return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
		}
		return checkPrivateKey(key)
	}

	der, err := decodeBlob(data)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: pkcs8: %v", ErrKeyFormat, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: pkcs8 blob holds %T", ErrKeyAlgorithm, parsed)
	}
	return checkPrivateKey(key)
}

// ParsePublicKey parses PKIX PEM text or a base64 PKIX DER blob.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	if bytes.Contains(data, []byte(pemMarker)) {
		key, err := gjwt.ParseRSAPublicKeyFromPEM(data)
		if err != nil {
			if errors.Is(err, gjwt.ErrNotRSAPublicKey) {
				return nil, fmt.Errorf("%w: pem block holds a non-RSA public key", ErrKeyAlgorithm)
			}
			return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
		}
		return key, nil
	}

	der, err := decodeBlob(data)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: pkix: %v", ErrKeyFormat, err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: pkix blob holds %T", ErrKeyAlgorithm, parsed)
	}
	return key, nil
}

// DerivePublicKey rebuilds the public half from the modulus and public exponent
// carried by priv.
func DerivePublicKey(priv *rsa.PrivateKey) (*rsa.PublicKey, error) {
	if priv == nil || priv.N == nil || priv.N.Sign() <= 0 || priv.E < 2 {
		return nil, ErrKeyDerivation
	}
	n := new(big.Int).Set(priv.N)
	return &rsa.PublicKey{N: n, E: priv.E}, nil
}

func checkPrivateKey(key *rsa.PrivateKey) (*rsa.PrivateKey, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyAlgorithm, err)
	}
	return key, nil
}

func readSource(source string) ([]byte, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty key source", ErrKeyFormat)
	}
	if strings.Contains(trimmed, pemMarker) {
		return []byte(trimmed), nil
	}
	if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrKeyFormat, trimmed, err)
		}
		return data, nil
	}
	return []byte(trimmed), nil
}

// decodeBlob strips whitespace and base64-decodes, accepting padded and unpadded input.
func decodeBlob(data []byte) ([]byte, error) {
	compact := strings.Join(strings.Fields(string(data)), "")
	if compact == "" {
		return nil, fmt.Errorf("%w: empty key blob", ErrKeyFormat)
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if der, err := enc.DecodeString(compact); err == nil {
			return der, nil
		}
	}
	return nil, fmt.Errorf("%w: key blob is not base64", ErrKeyFormat)
}
