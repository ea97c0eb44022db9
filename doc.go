// Package goScope issues short-lived, scoped, RSA-signed bearer tokens to callers that
// hold a session token, and verifies such tokens.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Control flow
//
//	Login(identity)                -> session token "{identity}-{uuid}"
//	IssueTokenForBearer(header, s) -> resolve header -> sign token -> self-check -> token
//
// # Architecture boundaries
//
// goScope is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (MetricsSnapshot, AuditEvent). Key handling lives in keys, the scope model in acl, the
// token layout in jwt, and session bookkeeping in session.
//
// # What this package must NOT do
//
//   - Log or audit key material, session tokens, or issued tokens.
//   - Start background goroutines.
//   - Hand out a token that did not verify under the engine's own public key.
package goScope
