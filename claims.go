package goToken

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// Application claim keys attached by CreateUserAccessToken.
const (
	ClaimUsername = "username"
	ClaimUserID   = "id"
)

// registeredClaims are owned by the engine and may not appear in caller claims.
var registeredClaims = map[string]struct{}{
	"jti": {},
	"sub": {},
	"iat": {},
	"exp": {},
	"nbf": {},
	"iss": {},
	"aud": {},
}

// IsReservedClaim reports whether key is engine-owned.
func IsReservedClaim(key string) bool {
	_, ok := registeredClaims[key]
	return ok
}

// Claims is the verified payload of a token.
type Claims struct {
	// ID is the per-token unique identifier (jti). The engine never checks it.
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Extra holds every non-registered claim. Refresh tokens carry none.
	Extra ClaimMap
}

// Username returns the "username" claim, or "" when absent or not a string.
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	v, _ := c.Extra.String(ClaimUsername)
	return v
}

// ClaimMap is the open, string-keyed claim set of a token. Numbers decode as
// int64 when integral and float64 otherwise; objects and arrays decode as
// map[string]any and []any.
type ClaimMap map[string]any

// Keys returns claim keys in sorted order.
func (m ClaimMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the raw claim value.
func (m ClaimMap) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// String returns the claim when it is a string.
func (m ClaimMap) String(key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}

// Int64 returns the claim when it is an integral number.
func (m ClaimMap) Int64(key string) (int64, bool) {
	switch v := m[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// Float64 returns the claim when it is any number.
func (m ClaimMap) Float64(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Bool returns the claim when it is a boolean.
func (m ClaimMap) Bool(key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}

func checkExtraClaims(extra map[string]any) error {
	for k := range extra {
		if IsReservedClaim(k) {
			return fmt.Errorf("%w: %q", ErrReservedClaim, k)
		}
	}
	return nil
}

// claimsFromMap converts a verified payload. Registered fields with the wrong
// JSON type make the token invalid.
func claimsFromMap(raw gjwt.MapClaims) (*Claims, error) {
	out := &Claims{Extra: make(ClaimMap, len(raw))}

	if v, ok := raw["jti"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("jti claim has type %T", v)
		}
		out.ID = s
	}
	sub, err := raw.GetSubject()
	if err != nil {
		return nil, err
	}
	out.Subject = sub

	if iat, err := raw.GetIssuedAt(); err != nil {
		return nil, err
	} else if iat != nil {
		out.IssuedAt = iat.Time
	}
	exp, err := raw.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}

	for k, v := range raw {
		if IsReservedClaim(k) {
			continue
		}
		out.Extra[k] = normalizeClaimValue(v)
	}
	return out, nil
}

func normalizeClaimValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeClaimValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalizeClaimValue(inner)
		}
		return out
	default:
		return v
	}
}
