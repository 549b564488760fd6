package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestIssueInspectValidate(t *testing.T) {
	t.Setenv("GOTOKEN_JWT_SECRET", testSecret)

	code, out, errOut := runCLI(t, "issue-access", "-sub", "42", "-claim", "username=alice", "-claim", "level=3")
	if code != exitOK {
		t.Fatalf("issue-access exit %d: %s", code, errOut)
	}
	tok := strings.TrimSpace(out)

	code, out, errOut = runCLI(t, "inspect", tok)
	if code != exitOK {
		t.Fatalf("inspect exit %d: %s", code, errOut)
	}
	var got inspectOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("inspect output: %v", err)
	}
	if got.Subject != "42" || got.Extra["username"] != "alice" || got.Extra["level"] != float64(3) {
		t.Fatalf("unexpected claims: %+v", got)
	}

	if code, out, _ = runCLI(t, "validate", "-sub", "42", tok); code != exitOK || strings.TrimSpace(out) != "valid" {
		t.Fatalf("validate = %d %q", code, out)
	}
	if code, out, _ = runCLI(t, "validate", "-sub", "43", tok); code != exitFailure || strings.TrimSpace(out) != "invalid" {
		t.Fatalf("validate wrong subject = %d %q", code, out)
	}
}

func TestIssueRefresh(t *testing.T) {
	t.Setenv("GOTOKEN_JWT_SECRET", testSecret)

	code, out, errOut := runCLI(t, "issue-refresh", "-sub", "42")
	if code != exitOK {
		t.Fatalf("issue-refresh exit %d: %s", code, errOut)
	}
	if code, _, _ := runCLI(t, "validate", strings.TrimSpace(out)); code != exitOK {
		t.Fatalf("refresh token did not validate: %d", code)
	}
}

func TestInvalidTokenExitCode(t *testing.T) {
	t.Setenv("GOTOKEN_JWT_SECRET", testSecret)

	code, _, errOut := runCLI(t, "inspect", "not-a-token")
	if code != exitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "invalid token") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	t.Setenv("GOTOKEN_JWT_SECRET", testSecret)

	cases := [][]string{
		{},
		{"bogus"},
		{"issue-access"},
		{"issue-refresh", "-sub", ""},
		{"inspect"},
		{"validate"},
		{"issue-access", "-sub", "42", "-claim", "novalue"},
	}
	for _, args := range cases {
		if code, _, _ := runCLI(t, args...); code != exitUsage {
			t.Errorf("args %v: exit %d, want %d", args, code, exitUsage)
		}
	}
}

func TestShortSecretFails(t *testing.T) {
	t.Setenv("GOTOKEN_JWT_SECRET", "short")

	code, _, errOut := runCLI(t, "issue-refresh", "-sub", "42")
	if code != exitFailure || !strings.Contains(errOut, "shorter than 32 bytes") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestLintFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gotoken.yaml")
	body := "jwt:\n  secret: \"" + strings.Repeat("ab", 16) + "\"\n  expiration: 2h\n  refresh-expiration: 1h\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	code, out, _ := runCLI(t, "-config", path, "lint")
	if code != exitFailure {
		t.Fatalf("expected exit 1 on HIGH findings, got %d", code)
	}
	for _, want := range []string{"refresh_not_longer_than_access", "secret_low_variety", "access_ttl_long"} {
		if !strings.Contains(out, want) {
			t.Errorf("lint output missing %s", want)
		}
	}
}

func TestAuditEventsToStderr(t *testing.T) {
	t.Setenv("GOTOKEN_JWT_SECRET", testSecret)
	t.Setenv("GOTOKEN_AUDIT_ENABLED", "true")

	code, _, errOut := runCLI(t, "issue-refresh", "-sub", "42")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(errOut, `"event_type":"refresh_issued"`) {
		t.Fatalf("expected audit line on stderr, got %q", errOut)
	}
}
