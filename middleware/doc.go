// Package middleware exposes HTTP middleware adapters built on top of goScope.Engine.
//
// # Guards
//
//   - [RequireSession]: resolves a session bearer to an identity.
//   - [RequireScope]: verifies an issued token and checks that it grants a scope.
//   - [ClientIP]: copies the peer address into the request context for audit events.
//
// Guards read the Authorization header, call the Engine, and inject the result into
// the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself; all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Echo the reason for a rejection to the client.
package middleware
