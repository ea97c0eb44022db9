// Package otel binds goScope engine metrics to an OpenTelemetry Meter.
//
// [New] registers one Int64ObservableCounter per engine counter. The issue latency
// histogram is published as a cumulative "_bucket" counter with one series per "le"
// attribute plus a "_count" counter. A single callback reads
// [goScope.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
