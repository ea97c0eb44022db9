// Package rate provides a Redis-backed fixed-window counter used to throttle token
// issuance per identity.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// "{prefix}:{identity}" with the default prefix "gs:rl".
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the Engine does).
//   - Be imported outside the goScope module.
package rate
