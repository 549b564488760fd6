// Package config loads a goToken.Config from an optional file and the
// environment using Viper.
//
// Keys live under "jwt", "audit" and "metrics". Every key can be overridden
// from the environment with the GOTOKEN_ prefix, dots and dashes mapped to
// underscores: jwt.refresh-expiration becomes GOTOKEN_JWT_REFRESH_EXPIRATION.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/spf13/viper"
)

const EnvPrefix = "GOTOKEN"

const (
	KeySecret            = "jwt.secret"
	KeyExpiration        = "jwt.expiration"
	KeyRefreshExpiration = "jwt.refresh-expiration"
	KeyHeader            = "jwt.header"
	KeyTokenHead         = "jwt.token-head"
	KeyRefreshPath       = "jwt.refresh-path"

	KeyAuditEnabled    = "audit.enabled"
	KeyAuditBufferSize = "audit.buffer-size"
	KeyAuditDropIfFull = "audit.drop-if-full"

	KeyMetricsEnabled   = "metrics.enabled"
	KeyMetricsLatencies = "metrics.latency-histograms"
)

// Load reads path (YAML, JSON or TOML by extension) when non-empty, applies
// environment overrides and returns the resulting Config.
//
// Load does not check the secret; goToken.Builder.Build does. A missing file
// at a non-empty path is an error.
func Load(path string) (goToken.Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return goToken.Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// New returns a Viper instance with goToken defaults and env binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := goToken.DefaultConfig()
	v.SetDefault(KeySecret, "")
	v.SetDefault(KeyExpiration, def.AccessTTL.String())
	v.SetDefault(KeyRefreshExpiration, def.RefreshTTL.String())
	v.SetDefault(KeyHeader, def.HeaderName)
	v.SetDefault(KeyTokenHead, def.TokenPrefix)
	v.SetDefault(KeyRefreshPath, "")
	v.SetDefault(KeyAuditEnabled, def.Audit.Enabled)
	v.SetDefault(KeyAuditBufferSize, def.Audit.BufferSize)
	v.SetDefault(KeyAuditDropIfFull, def.Audit.DropIfFull)
	v.SetDefault(KeyMetricsEnabled, def.Metrics.Enabled)
	v.SetDefault(KeyMetricsLatencies, def.Metrics.EnableLatencyHistograms)
	return v
}

// FromViper maps v onto a Config.
func FromViper(v *viper.Viper) (goToken.Config, error) {
	access, err := duration(v, KeyExpiration)
	if err != nil {
		return goToken.Config{}, err
	}
	refresh, err := duration(v, KeyRefreshExpiration)
	if err != nil {
		return goToken.Config{}, err
	}

	return goToken.Config{
		Secret:      v.GetString(KeySecret),
		AccessTTL:   access,
		RefreshTTL:  refresh,
		HeaderName:  v.GetString(KeyHeader),
		TokenPrefix: v.GetString(KeyTokenHead),
		RefreshPath: v.GetString(KeyRefreshPath),
		Audit: goToken.AuditConfig{
			Enabled:    v.GetBool(KeyAuditEnabled),
			BufferSize: v.GetInt(KeyAuditBufferSize),
			DropIfFull: v.GetBool(KeyAuditDropIfFull),
		},
		Metrics: goToken.MetricsConfig{
			Enabled:                 v.GetBool(KeyMetricsEnabled),
			EnableLatencyHistograms: v.GetBool(KeyMetricsLatencies),
		},
	}, nil
}

var errBadDuration = errors.New("config: invalid duration")

// duration accepts Go duration strings ("30m", "168h"). A bare integer is
// read as milliseconds, the unit of older property files.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case time.Duration:
		return raw, nil
	case int:
		return time.Duration(raw) * time.Millisecond, nil
	case int64:
		return time.Duration(raw) * time.Millisecond, nil
	case float64:
		if raw != float64(int64(raw)) {
			return 0, fmt.Errorf("%w: %s=%v", errBadDuration, key, raw)
		}
		return time.Duration(raw) * time.Millisecond, nil
	case string:
		s := strings.TrimSpace(raw)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", errBadDuration, key, raw)
		}
		return d, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", errBadDuration, key, raw)
	}
}
