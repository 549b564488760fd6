package goToken

import (
	"errors"
	"strings"
	"time"
)

// LintSeverity ranks advisory configuration findings.
type LintSeverity uint8

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one advisory finding. Code is stable and machine readable.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings produced by Config.Lint.
type LintResult []LintWarning

const (
	lintMaxAccessTTL   = time.Hour
	lintMaxRefreshTTL  = 30 * 24 * time.Hour
	lintMinSecretBytes = 8
)

// Lint reports configurations that pass Validate but are likely mistakes.
// It never blocks startup on its own; callers can escalate with AsError.
func (c Config) Lint() LintResult {
	c = c.withDefaults()
	var out LintResult

	if c.RefreshTTL <= c.AccessTTL {
		out = append(out, LintWarning{
			Code:     "refresh_not_longer_than_access",
			Severity: LintHigh,
			Message:  "RefreshTTL should be materially longer than AccessTTL",
		})
	}
	if c.Secret != "" && distinctBytes(c.Secret) < lintMinSecretBytes {
		out = append(out, LintWarning{
			Code:     "secret_low_variety",
			Severity: LintHigh,
			Message:  "signing secret uses fewer than 8 distinct bytes",
		})
	}
	if c.AccessTTL > lintMaxAccessTTL {
		out = append(out, LintWarning{
			Code:     "access_ttl_long",
			Severity: LintWarn,
			Message:  "AccessTTL above 1h widens the window for a leaked access token",
		})
	}
	if c.RefreshTTL > lintMaxRefreshTTL {
		out = append(out, LintWarning{
			Code:     "refresh_ttl_long",
			Severity: LintWarn,
			Message:  "RefreshTTL above 30d",
		})
	}
	if !strings.HasSuffix(c.TokenPrefix, " ") {
		out = append(out, LintWarning{
			Code:     "prefix_no_separator",
			Severity: LintInfo,
			Message:  "TokenPrefix does not end with a space; \"Bearer x\" will not be stripped",
		})
	}
	if strings.TrimSpace(c.RefreshPath) == "" {
		out = append(out, LintWarning{
			Code:     "refresh_path_unset",
			Severity: LintInfo,
			Message:  "RefreshPath is empty; the request layer cannot route refresh tokens",
		})
	}
	if !c.Audit.Enabled {
		out = append(out, LintWarning{
			Code:     "audit_disabled",
			Severity: LintInfo,
			Message:  "token lifecycle events are not audited",
		})
	}

	return out
}

// Codes returns the finding codes in order.
func (r LintResult) Codes() []string {
	codes := make([]string, 0, len(r))
	for _, w := range r {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity returns findings at or above floor.
func (r LintResult) BySeverity(floor LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= floor {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins findings at or above floor into one error, or returns nil.
func (r LintResult) AsError(floor LintSeverity) error {
	var errs []error
	for _, w := range r.BySeverity(floor) {
		errs = append(errs, errors.New(w.Severity.String()+" "+w.Code+": "+w.Message))
	}
	return errors.Join(errs...)
}

func distinctBytes(s string) int {
	var seen [256]bool
	n := 0
	for i := 0; i < len(s); i++ {
		if !seen[s[i]] {
			seen[s[i]] = true
			n++
		}
	}
	return n
}
