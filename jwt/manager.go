package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBytes is the smallest HS256 key accepted by [NewManager].
const MinKeyBytes = 32

// MaxLeeway caps the expiry tolerance a Manager can be configured with.
const MaxLeeway = 2 * time.Minute

var (
	// ErrExpired marks a token whose signature verified but whose exp has passed
	// (after leeway).
	ErrExpired = errors.New("token expired")
	// ErrInvalid marks every other parse failure: malformed segments, bad
	// signature, unexpected algorithm, missing exp.
	ErrInvalid = errors.New("token invalid")
)

// Config defines how a Manager signs and verifies tokens.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Secret []byte
	Leeway time.Duration
	// Now overrides the verification clock. Nil means time.Now.
	Now func() time.Time
}

// Manager signs and verifies HS256 compact JWTs with a single symmetric key.
//
// A Manager holds only immutable state and is safe for concurrent use.
type Manager struct {
	key    []byte
	leeway time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewManager validates cfg and returns a Manager that owns a private copy of the key.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a secret")
	}
	if len(cfg.Secret) < MinKeyBytes {
		return nil, fmt.Errorf("hs256 secret must be at least %d bytes, got %d", MinKeyBytes, len(cfg.Secret))
	}
	if cfg.Leeway < 0 || cfg.Leeway > MaxLeeway {
		return nil, errors.New("invalid leeway configuration")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	key := make([]byte, len(cfg.Secret))
	copy(key, cfg.Secret)

	m := &Manager{
		key:    key,
		leeway: cfg.Leeway,
		now:    now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(now),
		jwt.WithJSONNumber(),
	)
	return m, nil
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Algorithm reports the JOSE alg value used for signing.
func (m *Manager) Algorithm() string {
	return jwt.SigningMethodHS256.Alg()
}

// KeyLength reports the signing key size in bytes.
func (m *Manager) KeyLength() int {
	return len(m.key)
}

// Sign serializes claims into a signed compact token.
func (m *Manager) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Parse verifies raw and returns its payload. The error wraps [ErrExpired]
// only when the signature was verified and the time window has elapsed;
// all other failures wrap [ErrInvalid].
func (m *Manager) Parse(raw string) (jwt.MapClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalid)
	}

	claims := jwt.MapClaims{}
	token, err := m.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.key, nil
	})
	if err != nil {
		// The parser checks the signature before claims, so an exp failure
		// implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, jwt.ErrTokenInvalidClaims)
	}

	return claims, nil
}
