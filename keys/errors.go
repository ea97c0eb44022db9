package keys

import "errors"

var (
	// ErrKeyFormat is returned when key material cannot be decoded or parsed.
	ErrKeyFormat = errors.New("malformed key material")
	// ErrKeyAlgorithm is returned when key material is not RSA or is structurally invalid.
	ErrKeyAlgorithm = errors.New("key is not a usable RSA key")
	// ErrKeyDerivation is returned when a public key cannot be derived from a private key.
	ErrKeyDerivation = errors.New("cannot derive public key")
	// ErrSigning is returned when the underlying signature operation fails.
	ErrSigning = errors.New("signing failed")
	// ErrUnsupportedDigest is returned for digest names outside [SHA1] and [SHA256].
	ErrUnsupportedDigest = errors.New("unsupported digest")
	// ErrCipher is returned when RSA encryption or decryption fails.
	ErrCipher = errors.New("rsa cipher operation failed")
)
