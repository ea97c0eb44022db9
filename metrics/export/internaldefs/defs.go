package internaldefs

import (
	goScope "github.com/MrEthical07/goScope"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   goScope.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   goScope.MetricID
	Name string
	Help string
}

// The audit-dropped counter counts of audit events lost to a full sink.
const (
	AuditDroppedName = "goscope_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the sink buffer was full."
)

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goScope.MetricLoginSuccess, Name: "goscope_login_success_total", Help: "Session tokens handed out."},
	{ID: goScope.MetricLoginFailure, Name: "goscope_login_failure_total", Help: "Rejected or failed logins."},
	{ID: goScope.MetricResolveSuccess, Name: "goscope_resolve_success_total", Help: "Bearer headers resolved to an identity."},
	{ID: goScope.MetricResolveFailure, Name: "goscope_resolve_failure_total", Help: "Bearer headers that did not resolve."},
	{ID: goScope.MetricTokenIssued, Name: "goscope_token_issued_total", Help: "User tokens issued after a passing self-check."},
	{ID: goScope.MetricAdminTokenIssued, Name: "goscope_admin_token_issued_total", Help: "Admin tokens issued after a passing self-check."},
	{ID: goScope.MetricIssueFailure, Name: "goscope_issue_failure_total", Help: "Token requests rejected or failed while signing."},
	{ID: goScope.MetricIssueRateLimited, Name: "goscope_issue_rate_limited_total", Help: "Token requests refused by the issuance throttle."},
	{ID: goScope.MetricSelfCheckFailure, Name: "goscope_self_check_failure_total", Help: "Signed tokens that failed to verify against the public key."},
	{ID: goScope.MetricVerifySuccess, Name: "goscope_verify_success_total", Help: "Tokens accepted by Verify."},
	{ID: goScope.MetricVerifyFailure, Name: "goscope_verify_failure_total", Help: "Tokens rejected by Verify."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goScope.MetricIssueLatency, Name: "goscope_issue_latency_seconds", Help: "Sign and self-check latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The engine keeps one
// extra overflow bucket.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// BucketLabels holds the Prometheus-style "le" value of each bucket, overflow included.
var BucketLabels = []string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// NormalizeBuckets pads or truncates raw to the engine's eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals; the last entry is the
// sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
