package goToken

import (
	"io"

	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	internalmetrics "github.com/MrEthical07/goToken/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// RedisStreamSink is an [AuditSink] that appends events to a Redis stream.
type RedisStreamSink = internalaudit.RedisStreamSink

// RedisStreamOptions configures [NewRedisStreamSink].
type RedisStreamOptions = internalaudit.RedisStreamOptions

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewRedisStreamSink creates a [RedisStreamSink] writing through client.
// XADD runs on the dispatcher goroutine, never on a token operation.
func NewRedisStreamSink(client redis.UniversalClient, opts RedisStreamOptions) *RedisStreamSink {
	return internalaudit.NewRedisStreamSink(client, opts)
}

// MetricID identifies a counter or histogram in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricAccessIssued    = MetricID(internalmetrics.MetricAccessIssued)
	MetricRefreshIssued   = MetricID(internalmetrics.MetricRefreshIssued)
	MetricIssueFailure    = MetricID(internalmetrics.MetricIssueFailure)
	MetricParseSuccess    = MetricID(internalmetrics.MetricParseSuccess)
	MetricParseExpired    = MetricID(internalmetrics.MetricParseExpired)
	MetricParseInvalid    = MetricID(internalmetrics.MetricParseInvalid)
	MetricValidateSuccess = MetricID(internalmetrics.MetricValidateSuccess)
	MetricValidateFailure = MetricID(internalmetrics.MetricValidateFailure)
	MetricSubjectMismatch = MetricID(internalmetrics.MetricSubjectMismatch)
	// MetricParseLatency is the only histogram.
	MetricParseLatency = MetricID(internalmetrics.MetricParseLatency)
)

// Metrics holds atomic counters and the optional parse latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}
