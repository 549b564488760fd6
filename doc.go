// Package goToken issues and verifies signed, time-bounded access and refresh
// tokens for stateless session management.
//
// Tokens are compact HS256 JWTs carrying jti, sub, iat and exp, plus
// application claims on access tokens. Verification tolerates a fixed 60s
// clock skew on exp and reports failures as a [*TokenError] whose Kind
// separates expired tokens (authentic, out of time) from invalid ones
// (anything else).
//
// # Construction
//
// An [Engine] is built once through [Builder.Build] or [NewEngine]. Build
// fails when the signing secret is blank or shorter than 32 UTF-8 bytes, so a
// misconfigured process never issues a token. The key is owned by the Engine;
// engines with different secrets coexist in one process.
//
// # Concurrency
//
// Engine methods are safe for concurrent use. Token operations do no I/O. The
// optional audit dispatcher runs one worker goroutine, and sinks such as
// [RedisStreamSink] only do network I/O there.
//
// # What this package must NOT do
//
//   - Keep a process-wide secret or engine.
//   - Log raw tokens or key material.
//   - Revoke tokens. jti is allocated for callers that track revocation.
package goToken
