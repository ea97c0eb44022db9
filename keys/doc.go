// Package keys loads RSA key material and performs the raw RSA operations that back
// token signing and verification.
//
// # Key sources
//
// A private key source is one of: a path to a PEM file, inline PEM text, or a bare
// base64 DER blob (PKCS#8). PEM input may carry PKCS#8 or PKCS#1 material.
//
// # Architecture boundaries
//
// This package owns [KeyPair], [Digest], and the sign/verify/encrypt/decrypt
// primitives. It does NOT know about token layout, scopes, or sessions.
//
// # What this package must NOT do
//
//   - Log or format private key material ([KeyPair] redacts itself).
//   - Reload keys after the first successful load through a [Cache].
package keys
