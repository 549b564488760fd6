package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultStream     = "gotoken:audit"
	defaultStreamCap  = 100000
	defaultEmitBudget = 2 * time.Second
)

// RedisStreamSink appends each event to a Redis stream with XADD, trimming the
// stream approximately to MaxLen entries.
type RedisStreamSink struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	onErr  func(error)
}

// RedisStreamOptions configures a RedisStreamSink. Zero values select defaults.
type RedisStreamOptions struct {
	Stream string
	MaxLen int64
	// OnError observes XADD failures; events are not retried.
	OnError func(error)
}

func NewRedisStreamSink(client redis.UniversalClient, opts RedisStreamOptions) *RedisStreamSink {
	if opts.Stream == "" {
		opts.Stream = defaultStream
	}
	if opts.MaxLen <= 0 {
		opts.MaxLen = defaultStreamCap
	}
	return &RedisStreamSink{
		client: client,
		stream: opts.Stream,
		maxLen: opts.MaxLen,
		onErr:  opts.OnError,
	}
}

// Stream returns the target stream key.
func (s *RedisStreamSink) Stream() string {
	return s.stream
}

func (s *RedisStreamSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.client == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, defaultEmitBudget)
	defer cancel()

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: streamValues(event),
	}).Err()
	if err != nil && s.onErr != nil {
		s.onErr(err)
	}
}

func streamValues(event Event) []interface{} {
	values := []interface{}{
		"timestamp", event.Timestamp.UTC().Format(time.RFC3339Nano),
		"event_type", event.EventType,
		"success", strconv.FormatBool(event.Success),
	}
	if event.Subject != "" {
		values = append(values, "subject", event.Subject)
	}
	if event.TokenID != "" {
		values = append(values, "token_id", event.TokenID)
	}
	if event.TokenKind != "" {
		values = append(values, "token_kind", event.TokenKind)
	}
	if event.Error != "" {
		values = append(values, "error", event.Error)
	}
	for k, v := range event.Metadata {
		values = append(values, "meta."+k, v)
	}
	return values
}
