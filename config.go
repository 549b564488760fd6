package goToken

import (
	"strings"
	"time"
)

const (
	// MinSecretBytes is the minimum UTF-8 byte length of the signing secret.
	// HS256 keys shorter than the hash output are rejected at construction.
	MinSecretBytes = 32

	// ClockSkew is the fixed tolerance applied in a token's favor when checking
	// exp. It is not configurable.
	ClockSkew = 60 * time.Second

	DefaultAccessTTL   = 30 * time.Minute
	DefaultRefreshTTL  = 7 * 24 * time.Hour
	DefaultHeaderName  = "Authorization"
	DefaultTokenPrefix = "Bearer "
)

// Config is the resolved token configuration handed to the engine by a
// configuration provider.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	HeaderName string
	// TokenPrefix is stripped from the head of raw tokens before parsing.
	TokenPrefix string
	// RefreshPath is informational for the request layer; the engine never
	// branches on it.
	RefreshPath string

	Audit   AuditConfig
	Metrics MetricsConfig
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the parse latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns every default except the secret, which has none.
func DefaultConfig() Config {
	return Config{
		AccessTTL:   DefaultAccessTTL,
		RefreshTTL:  DefaultRefreshTTL,
		HeaderName:  DefaultHeaderName,
		TokenPrefix: DefaultTokenPrefix,
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// withDefaults fills zero-valued lifetimes and header settings.
func (c Config) withDefaults() Config {
	if c.AccessTTL == 0 {
		c.AccessTTL = DefaultAccessTTL
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = DefaultRefreshTTL
	}
	if c.HeaderName == "" {
		c.HeaderName = DefaultHeaderName
	}
	if c.TokenPrefix == "" {
		c.TokenPrefix = DefaultTokenPrefix
	}
	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = 1024
	}
	return c
}

// Validate checks c without applying defaults. Every failure wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Secret) == "" {
		return configError(ErrSecretMissing)
	}
	// len counts UTF-8 bytes, not runes.
	if len(c.Secret) < MinSecretBytes {
		return configError(ErrSecretTooShort)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return configError(ErrInvalidTTL)
	}
	if strings.TrimSpace(c.HeaderName) == "" {
		return configError(ErrInvalidHeader)
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return configError(ErrInvalidAudit)
	}
	return nil
}
