package goToken

import (
	"errors"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/jwt"
)

// Builder assembles an [Engine]. A Builder is single-use: Build may be called
// once.
type Builder struct {
	config    Config
	logger    *slog.Logger
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets the signing secret.
func (b *Builder) WithSecret(secret string) *Builder {
	b.config.Secret = secret
	return b
}

// WithLogger sets the logger used for verification failures. Defaults to
// slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces time.Now for issuance and expiry checks. Used by tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and derives the signing key. It fails
// before any token can be issued when the secret is missing or shorter than
// MinSecretBytes.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manager, err := jwt.NewManager(jwt.Config{
		Secret: []byte(cfg.Secret),
		Leeway: ClockSkew,
		Now:    b.clock,
	})
	if err != nil {
		return nil, configError(err)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	var dispatcher *internalaudit.Dispatcher
	if cfg.Audit.Enabled {
		dispatcher = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	b.built = true
	return &Engine{
		config:  cfg,
		manager: manager,
		logger:  logger,
		audit:   dispatcher,
		metrics: NewMetrics(cfg.Metrics),
	}, nil
}

// NewEngine is New().WithConfig(cfg).Build().
func NewEngine(cfg Config) (*Engine, error) {
	return New().WithConfig(cfg).Build()
}
