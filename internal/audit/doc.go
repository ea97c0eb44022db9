// Package audit delivers security-relevant events to caller-supplied sinks.
//
// # Components
//
//   - [Sink]: interface for event consumers.
//   - [ChannelSink], [JSONWriterSink], [ZapSink], [NoOpSink]: stock sinks.
//   - [Event]: structured audit record with timestamp, type, identity, token id, IP, metadata.
//
// # Architecture boundaries
//
// Delivery is synchronous: Emit runs on the caller's goroutine and sinks must return
// promptly. This package does NOT decide which events to emit; that responsibility
// belongs to the Engine.
//
// # What this package must NOT do
//
//   - Start goroutines.
//   - Import goScope or any sibling internal package.
//   - Record session tokens, issued tokens, or key material.
package audit
