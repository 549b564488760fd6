package goToken

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig wraps every construction-time configuration failure.
	ErrInvalidConfig = errors.New("invalid token config")
	// ErrSecretMissing reports an absent or blank signing secret.
	ErrSecretMissing = errors.New("signing secret is not configured")
	// ErrSecretTooShort reports a secret below MinSecretBytes UTF-8 bytes.
	ErrSecretTooShort = errors.New("signing secret is shorter than 32 bytes")
	// ErrInvalidTTL reports a non-positive token lifetime.
	ErrInvalidTTL = errors.New("token ttl must be > 0")
	// ErrInvalidHeader reports a blank header name.
	ErrInvalidHeader = errors.New("header name must not be blank")
	// ErrInvalidAudit reports an unusable audit buffer configuration.
	ErrInvalidAudit = errors.New("audit buffer size must be > 0 when audit is enabled")

	// ErrSubjectRequired is returned when a token is requested without a subject.
	ErrSubjectRequired = errors.New("token subject is required")
	// ErrReservedClaim is returned when caller claims try to set an engine-owned key.
	ErrReservedClaim = errors.New("claim key is reserved")

	// ErrTokenExpired matches any *TokenError of kind TokenExpired.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid matches any *TokenError of kind TokenInvalid.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrEngineNotReady is returned by operations on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// TokenErrorKind classifies a token verification failure.
type TokenErrorKind uint8

const (
	// TokenInvalid covers malformed input, signature mismatch, unsupported
	// algorithm, missing exp and empty input.
	TokenInvalid TokenErrorKind = iota + 1
	// TokenExpired means the signature verified but exp + ClockSkew has passed.
	TokenExpired
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenExpired:
		return "expired"
	case TokenInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// TokenError is the structured failure returned by ParseToken and every
// extraction helper.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " token"
	}
	return fmt.Sprintf("%s token: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *TokenError) Is(target error) bool {
	switch target {
	case ErrTokenExpired:
		return e.Kind == TokenExpired
	case ErrTokenInvalid:
		return e.Kind == TokenInvalid
	default:
		return false
	}
}

// IsExpired reports whether err is an expired-token failure.
func IsExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsInvalid reports whether err is an invalid-token failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrTokenInvalid)
}

func configError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
}
