package internaldefs

import (
	goToken "github.com/MrEthical07/goToken"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goToken.MetricAccessIssued, Name: "gotoken_access_issued_total", Help: "Access tokens issued."},
	{ID: goToken.MetricRefreshIssued, Name: "gotoken_refresh_issued_total", Help: "Refresh tokens issued."},
	{ID: goToken.MetricIssueFailure, Name: "gotoken_issue_failure_total", Help: "Token issuance requests rejected or failed."},
	{ID: goToken.MetricParseSuccess, Name: "gotoken_parse_success_total", Help: "Tokens that verified."},
	{ID: goToken.MetricParseExpired, Name: "gotoken_parse_expired_total", Help: "Authentic tokens rejected as expired."},
	{ID: goToken.MetricParseInvalid, Name: "gotoken_parse_invalid_total", Help: "Tokens rejected as invalid."},
	{ID: goToken.MetricValidateSuccess, Name: "gotoken_validate_success_total", Help: "Boolean validations that passed."},
	{ID: goToken.MetricValidateFailure, Name: "gotoken_validate_failure_total", Help: "Boolean validations that failed."},
	{ID: goToken.MetricSubjectMismatch, Name: "gotoken_subject_mismatch_total", Help: "Verified tokens rejected for the wrong subject."},
}

var HistogramDefs = []HistogramDef{
	{ID: goToken.MetricParseLatency, Name: "gotoken_parse_latency_seconds", Help: "Token parse latency histogram."},
}

// HistogramBounds mirror the engine's bucket edges, in seconds.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

var HistogramBoundSuffix = []string{
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_005",
	"0_025",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
