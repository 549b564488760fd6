// Command gotoken issues and inspects tokens using a goToken configuration
// file and GOTOKEN_* environment variables.
//
// Usage:
//
//	gotoken [-config path] [-log-level lvl] [-log-format json|text] <command> [args]
//
// Commands:
//
//	issue-access  -sub S [-claim k=v ...]   print a new access token
//	issue-refresh -sub S                    print a new refresh token
//	inspect TOKEN                           print verified claims as JSON
//	validate [-sub S] TOKEN                 exit 0 when valid, 1 otherwise
//	lint                                    print config findings; exit 1 on HIGH
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/config"
	"github.com/MrEthical07/goToken/internal/logx"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("gotoken", flag.ContinueOnError)
	global.SetOutput(stderr)
	var (
		configPath = global.String("config", "", "config file (yaml, json or toml)")
		logLevel   = global.String("log-level", "warn", "log level")
		logFormat  = global.String("log-format", "text", "log format: json or text")
	)
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, "gotoken: missing command")
		return exitUsage
	}

	logger := logx.New(logx.Config{
		Service: "gotoken",
		Level:   *logLevel,
		Format:  *logFormat,
		Output:  stderr,
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "gotoken: %v\n", err)
		return exitFailure
	}

	cmd, cmdArgs := rest[0], rest[1:]
	if cmd == "lint" {
		return runLint(cfg, stdout)
	}

	builder := goToken.New().WithConfig(cfg).WithLogger(logger)
	if cfg.Audit.Enabled {
		builder = builder.WithAuditSink(goToken.NewJSONWriterSink(stderr))
	}
	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(stderr, "gotoken: %v\n", err)
		return exitFailure
	}
	defer engine.Close()

	switch cmd {
	case "issue-access":
		err = runIssueAccess(engine, cmdArgs, stdout, stderr)
	case "issue-refresh":
		err = runIssueRefresh(engine, cmdArgs, stdout, stderr)
	case "inspect":
		err = runInspect(engine, cmdArgs, stdout, stderr)
	case "validate":
		err = runValidate(engine, cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "gotoken: unknown command %q\n", cmd)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		fmt.Fprintf(stderr, "gotoken: %v\n", err)
		return exitFailure
	}
}

// claimFlags collects repeated -claim k=v values.
type claimFlags map[string]any

func (c claimFlags) String() string {
	parts := make([]string, 0, len(c))
	for k, v := range c {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (c claimFlags) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("claim %q is not key=value", s)
	}
	c[k] = claimValue(v)
	return nil
}

// claimValue keeps integers and booleans typed so they round-trip as JSON
// numbers and booleans.
func claimValue(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func runIssueAccess(engine *goToken.Engine, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("issue-access", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sub := fs.String("sub", "", "token subject")
	claims := claimFlags{}
	fs.Var(claims, "claim", "extra claim key=value (repeatable)")
	if err := fs.Parse(args); err != nil || *sub == "" {
		fmt.Fprintln(stderr, "usage: gotoken issue-access -sub S [-claim k=v ...]")
		return errUsage
	}

	tok, err := engine.CreateAccessToken(*sub, claims)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, tok)
	return nil
}

func runIssueRefresh(engine *goToken.Engine, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("issue-refresh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sub := fs.String("sub", "", "token subject")
	if err := fs.Parse(args); err != nil || *sub == "" {
		fmt.Fprintln(stderr, "usage: gotoken issue-refresh -sub S")
		return errUsage
	}

	tok, err := engine.CreateRefreshToken(*sub)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, tok)
	return nil
}

type inspectOutput struct {
	ID        string         `json:"jti"`
	Subject   string         `json:"sub"`
	IssuedAt  time.Time      `json:"iat"`
	ExpiresAt time.Time      `json:"exp"`
	Extra     map[string]any `json:"claims,omitempty"`
}

func runInspect(engine *goToken.Engine, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: gotoken inspect TOKEN")
		return errUsage
	}

	claims, err := engine.ParseToken(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(inspectOutput{
		ID:        claims.ID,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
		Extra:     claims.Extra,
	})
}

func runValidate(engine *goToken.Engine, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sub := fs.String("sub", "", "required subject")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: gotoken validate [-sub S] TOKEN")
		return errUsage
	}
	raw := fs.Arg(0)

	var ok bool
	if *sub != "" {
		ok = engine.ValidateTokenFor(raw, *sub)
	} else {
		ok = engine.ValidateToken(raw)
	}
	if !ok {
		fmt.Fprintln(stdout, "invalid")
		return errors.New("token rejected")
	}
	fmt.Fprintln(stdout, "valid")
	return nil
}

func runLint(cfg goToken.Config, stdout io.Writer) int {
	findings := cfg.Lint()
	for _, w := range findings {
		fmt.Fprintf(stdout, "%-4s %s: %s\n", w.Severity, w.Code, w.Message)
	}
	if len(findings.BySeverity(goToken.LintHigh)) > 0 {
		return exitFailure
	}
	return exitOK
}
