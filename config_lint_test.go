package goToken

import (
	"strings"
	"testing"
	"time"
)

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestLint_DefaultConfigNoHighFindings(t *testing.T) {
	cfg := testConfig()
	if high := cfg.Lint().BySeverity(LintHigh); len(high) != 0 {
		t.Fatalf("default config has HIGH findings: %v", high.Codes())
	}
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Fatalf("AsError(HIGH) = %v", err)
	}
}

func TestLint_RefreshNotLongerThanAccess(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Hour
	cfg.RefreshTTL = time.Hour
	ws := cfg.Lint()
	if !containsCode(ws.Codes(), "refresh_not_longer_than_access") {
		t.Fatal("expected refresh_not_longer_than_access")
	}
	err := ws.AsError(LintHigh)
	if err == nil || !strings.Contains(err.Error(), "refresh_not_longer_than_access") {
		t.Fatalf("AsError(HIGH) = %v", err)
	}
}

func TestLint_LowVarietySecret(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = strings.Repeat("ab", 16)
	if !containsCode(cfg.Lint().Codes(), "secret_low_variety") {
		t.Fatal("expected secret_low_variety")
	}
}

func TestLint_LongTTLs(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = 2 * time.Hour
	cfg.RefreshTTL = 90 * 24 * time.Hour
	codes := cfg.Lint().Codes()
	if !containsCode(codes, "access_ttl_long") || !containsCode(codes, "refresh_ttl_long") {
		t.Fatalf("codes = %v", codes)
	}
}

func TestLint_InfoFindings(t *testing.T) {
	cfg := testConfig()
	cfg.TokenPrefix = "Bearer"
	cfg.RefreshPath = ""
	ws := cfg.Lint()
	for _, code := range []string{"prefix_no_separator", "refresh_path_unset", "audit_disabled"} {
		if !containsCode(ws.Codes(), code) {
			t.Errorf("expected %s", code)
		}
	}
	if len(ws.BySeverity(LintWarn)) != 0 {
		t.Fatalf("unexpected WARN+: %v", ws.BySeverity(LintWarn).Codes())
	}

	cfg.Audit.Enabled = true
	if containsCode(cfg.Lint().Codes(), "audit_disabled") {
		t.Fatal("audit_disabled with audit on")
	}
}

func TestLintSeverityString(t *testing.T) {
	if LintHigh.String() != "HIGH" || LintWarn.String() != "WARN" || LintInfo.String() != "INFO" {
		t.Fatal("unexpected severity names")
	}
}
