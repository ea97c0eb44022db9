// Package prometheus exposes goScope engine metrics through client_golang.
//
// [Collector] turns each [goScope.Engine.MetricsSnapshot] into const metrics at scrape
// time. Counter names are goscope_*_total; the single histogram is
// goscope_issue_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global default registry. Callers register the Collector or
//     mount [Handler].
//   - Mutate engine state.
package prometheus
