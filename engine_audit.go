package goToken

import (
	"context"
	"strconv"
)

const (
	auditEventAccessIssued    = "access_issued"
	auditEventRefreshIssued   = "refresh_issued"
	auditEventIssueFailure    = "issue_failure"
	auditEventTokenParsed     = "token_parsed"
	auditEventTokenExpired    = "token_expired"
	auditEventTokenInvalid    = "token_invalid"
	auditEventSubjectMismatch = "subject_mismatch"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

func (e *Engine) emitAudit(event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(context.Background(), event)
}

func (e *Engine) auditIssued(kind, subject, jti string, claimCount int) {
	if e.audit == nil {
		return
	}
	eventType := auditEventAccessIssued
	if kind == tokenKindRefresh {
		eventType = auditEventRefreshIssued
	}
	ev := AuditEvent{
		EventType: eventType,
		Subject:   subject,
		TokenID:   jti,
		TokenKind: kind,
		Success:   true,
	}
	if claimCount > 0 {
		ev.Metadata = map[string]string{"extra_claims": strconv.Itoa(claimCount)}
	}
	e.emitAudit(ev)
}

func (e *Engine) auditParseFailure(err *TokenError) {
	if e.audit == nil {
		return
	}
	eventType := auditEventTokenInvalid
	if err.Kind == TokenExpired {
		eventType = auditEventTokenExpired
	}
	e.emitAudit(AuditEvent{
		EventType: eventType,
		Success:   false,
		Error:     err.Error(),
	})
}

// AuditDropped reports events discarded by the dispatcher under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}
