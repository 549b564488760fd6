package goToken

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/jwt"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Engine issues and verifies access and refresh tokens with one signing key.
//
// Engine state is immutable after [Builder.Build]; every method is safe for
// concurrent use.
type Engine struct {
	config  Config
	manager *jwt.Manager
	logger  *slog.Logger
	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// ParseResult is the outcome of verifying one raw token. Exactly one of
// Claims and Err is set.
type ParseResult struct {
	Claims *Claims
	Err    error
}

// OK reports whether the token verified.
func (r ParseResult) OK() bool {
	return r.Err == nil && r.Claims != nil
}

// Close stops the audit dispatcher after draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a copy of the engine's counters. The result is
// empty when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) now() time.Time {
	return e.manager.Now()
}

// HeaderName is the request header the token travels in.
func (e *Engine) HeaderName() string { return e.config.HeaderName }

// TokenPrefix is the scheme prefix stripped before parsing.
func (e *Engine) TokenPrefix() string { return e.config.TokenPrefix }

// RefreshPath is the request path reserved for refresh tokens. The engine
// never branches on it.
func (e *Engine) RefreshPath() string { return e.config.RefreshPath }

// TokenFromHeader returns the raw value of the configured header. The prefix
// is left in place; ParseToken strips it.
func (e *Engine) TokenFromHeader(h http.Header) string {
	if e == nil || h == nil {
		return ""
	}
	return h.Get(e.config.HeaderName)
}

// CreateAccessToken issues an access token for subject carrying every entry
// of extra. Keys reserved by the engine are rejected with ErrReservedClaim.
func (e *Engine) CreateAccessToken(subject string, extra map[string]any) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if subject == "" {
		e.metricInc(MetricIssueFailure)
		return "", ErrSubjectRequired
	}
	if err := checkExtraClaims(extra); err != nil {
		e.metricInc(MetricIssueFailure)
		return "", err
	}
	return e.issue(tokenKindAccess, subject, extra, e.config.AccessTTL)
}

// CreateUserAccessToken issues an access token whose subject is the string
// form of userID, with the "id" and "username" claims set from the arguments.
// extra may not set either of them.
func (e *Engine) CreateUserAccessToken(userID any, username string, extra map[string]any) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if userID == nil {
		e.metricInc(MetricIssueFailure)
		return "", ErrSubjectRequired
	}
	subject := fmt.Sprint(userID)
	if subject == "" {
		e.metricInc(MetricIssueFailure)
		return "", ErrSubjectRequired
	}
	if err := checkExtraClaims(extra); err != nil {
		e.metricInc(MetricIssueFailure)
		return "", err
	}
	for _, k := range [...]string{ClaimUserID, ClaimUsername} {
		if _, ok := extra[k]; ok {
			e.metricInc(MetricIssueFailure)
			return "", fmt.Errorf("%w: %q is set from arguments", ErrReservedClaim, k)
		}
	}

	merged := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		merged[k] = v
	}
	merged[ClaimUserID] = userID
	merged[ClaimUsername] = username
	return e.issue(tokenKindAccess, subject, merged, e.config.AccessTTL)
}

// CreateRefreshToken issues a refresh token for subject. Refresh tokens carry
// no application claims and expire after RefreshTTL.
func (e *Engine) CreateRefreshToken(subject string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if subject == "" {
		e.metricInc(MetricIssueFailure)
		return "", ErrSubjectRequired
	}
	return e.issue(tokenKindRefresh, subject, nil, e.config.RefreshTTL)
}

func (e *Engine) issue(kind, subject string, extra map[string]any, ttl time.Duration) (string, error) {
	now := e.now()
	jti := uuid.NewString()

	claims := make(gjwt.MapClaims, len(extra)+4)
	for k, v := range extra {
		claims[k] = v
	}
	claims["jti"] = jti
	claims["sub"] = subject
	claims["iat"] = gjwt.NewNumericDate(now)
	claims["exp"] = gjwt.NewNumericDate(now.Add(ttl))

	token, err := e.manager.Sign(claims)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.logger.Error("token signing failed", "kind", kind, "subject", subject, "error", err)
		e.emitAudit(AuditEvent{
			EventType: auditEventIssueFailure,
			Subject:   subject,
			TokenKind: kind,
			Error:     err.Error(),
		})
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	if kind == tokenKindRefresh {
		e.metricInc(MetricRefreshIssued)
	} else {
		e.metricInc(MetricAccessIssued)
	}
	e.auditIssued(kind, subject, jti, len(extra))
	return token, nil
}

// Result verifies raw and returns its claims or a *TokenError. ParseToken and
// the Validate methods are projections of Result.
func (e *Engine) Result(raw string) ParseResult {
	if e == nil {
		return ParseResult{Err: &TokenError{Kind: TokenInvalid, Err: ErrEngineNotReady}}
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
	}
	res := e.parse(raw)
	if !start.IsZero() {
		e.metrics.Observe(MetricParseLatency, time.Since(start))
	}
	return res
}

func (e *Engine) parse(raw string) ParseResult {
	if prefix := e.config.TokenPrefix; prefix != "" && strings.HasPrefix(raw, prefix) {
		raw = raw[len(prefix):]
	}

	mc, err := e.manager.Parse(raw)
	if err != nil {
		return e.parseFailure(classify(err))
	}
	claims, err := claimsFromMap(mc)
	if err != nil {
		return e.parseFailure(&TokenError{Kind: TokenInvalid, Err: err})
	}

	e.metricInc(MetricParseSuccess)
	if e.audit != nil {
		e.emitAudit(AuditEvent{
			EventType: auditEventTokenParsed,
			Subject:   claims.Subject,
			TokenID:   claims.ID,
			Success:   true,
		})
	}
	return ParseResult{Claims: claims}
}

func classify(err error) *TokenError {
	if errors.Is(err, jwt.ErrExpired) {
		return &TokenError{Kind: TokenExpired, Err: err}
	}
	return &TokenError{Kind: TokenInvalid, Err: err}
}

func (e *Engine) parseFailure(terr *TokenError) ParseResult {
	if terr.Kind == TokenExpired {
		e.metricInc(MetricParseExpired)
		e.logger.Debug("token expired", "kind", terr.Kind.String(), "error", terr.Err)
	} else {
		e.metricInc(MetricParseInvalid)
		e.logger.Warn("token rejected", "kind", terr.Kind.String(), "error", terr.Err)
	}
	e.auditParseFailure(terr)
	return ParseResult{Err: terr}
}

// ParseToken verifies raw and returns its claims. Failures are *TokenError
// values matching ErrTokenExpired or ErrTokenInvalid.
func (e *Engine) ParseToken(raw string) (*Claims, error) {
	res := e.Result(raw)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Claims, nil
}

// ValidateToken reports whether raw verifies and has not expired.
func (e *Engine) ValidateToken(raw string) bool {
	ok := e.Result(raw).OK()
	e.recordValidate(ok)
	return ok
}

// ValidateTokenFor is ValidateToken plus an exact subject match.
func (e *Engine) ValidateTokenFor(raw, expectedSubject string) bool {
	res := e.Result(raw)
	if !res.OK() {
		e.recordValidate(false)
		return false
	}
	if res.Claims.Subject != expectedSubject {
		e.metricInc(MetricSubjectMismatch)
		e.recordValidate(false)
		e.logger.Warn("token subject mismatch",
			"token_id", res.Claims.ID,
			"subject", res.Claims.Subject,
			"expected_subject", expectedSubject,
		)
		e.emitAudit(AuditEvent{
			EventType: auditEventSubjectMismatch,
			Subject:   res.Claims.Subject,
			TokenID:   res.Claims.ID,
			Metadata:  map[string]string{"expected_subject": expectedSubject},
		})
		return false
	}
	e.recordValidate(true)
	return true
}

func (e *Engine) recordValidate(ok bool) {
	if ok {
		e.metricInc(MetricValidateSuccess)
	} else {
		e.metricInc(MetricValidateFailure)
	}
}

// ExtractSubject returns the sub claim of a verified token.
func (e *Engine) ExtractSubject(raw string) (string, error) {
	return ExtractClaim(e, raw, func(c *Claims) string { return c.Subject })
}

// ExtractUsername returns the username claim, or "" when the verified token
// has none.
func (e *Engine) ExtractUsername(raw string) (string, error) {
	return ExtractClaim(e, raw, (*Claims).Username)
}

// ExtractExpiration returns the exp claim of a verified token.
func (e *Engine) ExtractExpiration(raw string) (time.Time, error) {
	return ExtractClaim(e, raw, func(c *Claims) time.Time { return c.ExpiresAt })
}

// ExtractID returns the jti claim of a verified token.
func (e *Engine) ExtractID(raw string) (string, error) {
	return ExtractClaim(e, raw, func(c *Claims) string { return c.ID })
}

// ExtractClaim verifies raw and applies selector to its claims. On failure it
// returns the zero T and the parse error; selector is not called.
func ExtractClaim[T any](e *Engine, raw string, selector func(*Claims) T) (T, error) {
	var zero T
	claims, err := e.ParseToken(raw)
	if err != nil {
		return zero, err
	}
	return selector(claims), nil
}
