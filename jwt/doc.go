// Package jwt issues and verifies scoped RSA bearer tokens with a fixed byte layout.
//
// # Wire format
//
// A token is base64url(header) "." base64url(payload) "." base64url(signature), all
// segments unpadded. The signature covers the first two segments and the separating dot
// exactly as transmitted.
//
// Header and payload bytes come from [AppendHeader] and [AppendPayload], never from a
// generic JSON encoder: the verifying peer and older issuers agree on field order,
// two-space indentation and "\n" line breaks, and any drift breaks interoperability.
//
// # Architecture boundaries
//
// This package does not check expiry or ACL semantics on verify. Enforcement belongs
// to the verifying peer; [Manager.Verify] only establishes cryptographic authenticity.
package jwt
