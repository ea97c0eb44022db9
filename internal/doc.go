// Package internal holds packages that are private to goScope.
//
// # Sub-packages
//
//   - audit: synchronous event sinks (channel, JSON writer, zap)
//   - envconfig: environment and .env configuration loading for the binaries
//   - logging: zap logger construction
//   - rate: Redis-backed fixed-window issuance throttle
//
// # What this package must NOT do
//
//   - Export types that appear in the public goScope API, other than through aliases.
//   - Be imported by any package outside the goScope module.
package internal
