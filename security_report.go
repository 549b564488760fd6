package goToken

import "time"

// SecurityReport summarizes the engine's effective token settings. It never
// contains key material.
type SecurityReport struct {
	SigningAlgorithm string
	KeyBytes         int
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	ClockSkew        time.Duration
	HeaderName       string
	TokenPrefix      string
	RefreshPath      string
	AuditEnabled     bool
	MetricsEnabled   bool
	LintCodes        []string
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm: e.manager.Algorithm(),
		KeyBytes:         e.manager.KeyLength(),
		AccessTTL:        e.config.AccessTTL,
		RefreshTTL:       e.config.RefreshTTL,
		ClockSkew:        ClockSkew,
		HeaderName:       e.config.HeaderName,
		TokenPrefix:      e.config.TokenPrefix,
		RefreshPath:      e.config.RefreshPath,
		AuditEnabled:     e.audit != nil,
		MetricsEnabled:   e.metrics.Enabled(),
		LintCodes:        e.config.Lint().Codes(),
	}
}
