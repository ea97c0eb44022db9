package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
)

// Encrypt encrypts plaintext to pub with RSA PKCS#1 v1.5 and returns standard base64.
//
// PKCS#1 v1.5 encryption is weak; use only when a collaborating service dictates it.
func Encrypt(pub *rsa.PublicKey, plaintext string) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("%w: nil public key", ErrCipher)
	}
	out, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses [Encrypt].
func Decrypt(priv *rsa.PrivateKey, ciphertext string) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("%w: nil private key", ErrCipher)
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not base64", ErrCipher)
	}
	out, err := rsa.DecryptPKCS1v15(nil, priv, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return string(out), nil
}
