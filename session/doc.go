// Package session maps opaque session tokens, issued at login, back to the caller's
// identity.
//
// # Stores
//
//   - [MemoryStore] keeps mappings in process memory in a [sync.Map]; they live until
//     the process exits.
//   - [RedisStore] keeps mappings in Redis so several server instances can share
//     logins, optionally with a TTL.
//
// # Architecture boundaries
//
// This package owns the session token format ("{identity}-{uuid}") and the
// "Bearer <token>" header parsing. It does NOT issue or verify signed tokens.
//
// # What this package must NOT do
//
//   - Log session tokens (identities may be logged).
//   - Return errors from [Manager.Resolve]; failure to resolve means "unauthenticated".
package session
