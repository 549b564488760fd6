package goToken

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractClaimRoundTrip(t *testing.T) {
	engine := newTestEngine(t, testConfig(), nil)

	cases := []struct {
		name  string
		extra map[string]any
		check func(t *testing.T, c *Claims)
	}{
		{
			name:  "string",
			extra: map[string]any{"username": "alice", "role": "admin"},
			check: func(t *testing.T, c *Claims) {
				if v, _ := c.Extra.String("role"); v != "admin" {
					t.Fatalf("role = %q", v)
				}
			},
		},
		{
			name:  "integers survive exactly",
			extra: map[string]any{"id": int64(9007199254740993), "n": -3},
			check: func(t *testing.T, c *Claims) {
				if v, ok := c.Extra.Int64("id"); !ok || v != 9007199254740993 {
					t.Fatalf("id = %v", c.Extra["id"])
				}
				if v, ok := c.Extra.Int64("n"); !ok || v != -3 {
					t.Fatalf("n = %v", c.Extra["n"])
				}
			},
		},
		{
			name:  "float and bool",
			extra: map[string]any{"ratio": 1.5, "admin": true},
			check: func(t *testing.T, c *Claims) {
				if v, ok := c.Extra.Float64("ratio"); !ok || v != 1.5 {
					t.Fatalf("ratio = %v", c.Extra["ratio"])
				}
				if _, ok := c.Extra.Int64("ratio"); ok {
					t.Fatal("1.5 must not read as an integer")
				}
				if v, ok := c.Extra.Bool("admin"); !ok || !v {
					t.Fatalf("admin = %v", c.Extra["admin"])
				}
			},
		},
		{
			name: "nested values",
			extra: map[string]any{
				"scopes": []any{"read", "write"},
				"org":    map[string]any{"id": int64(7), "name": "acme"},
			},
			check: func(t *testing.T, c *Claims) {
				want := []any{"read", "write"}
				if !reflect.DeepEqual(c.Extra["scopes"], want) {
					t.Fatalf("scopes = %#v", c.Extra["scopes"])
				}
				wantOrg := map[string]any{"id": int64(7), "name": "acme"}
				if !reflect.DeepEqual(c.Extra["org"], wantOrg) {
					t.Fatalf("org = %#v", c.Extra["org"])
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := engine.CreateAccessToken("42", tc.extra)
			if err != nil {
				t.Fatalf("CreateAccessToken: %v", err)
			}
			claims, err := ExtractClaim(engine, tok, func(c *Claims) *Claims { return c })
			if err != nil {
				t.Fatalf("ExtractClaim: %v", err)
			}
			if got, want := claims.Extra.Keys(), keysOf(tc.extra); !reflect.DeepEqual(got, want) {
				t.Fatalf("keys = %v, want %v", got, want)
			}
			tc.check(t, claims)
		})
	}
}

func keysOf(m map[string]any) []string {
	return ClaimMap(m).Keys()
}

func TestReservedClaimsRejected(t *testing.T) {
	engine := newTestEngine(t, testConfig(), nil)

	for _, key := range []string{"jti", "sub", "iat", "exp", "nbf", "iss", "aud"} {
		_, err := engine.CreateAccessToken("42", map[string]any{key: "x"})
		if !errors.Is(err, ErrReservedClaim) {
			t.Fatalf("%s: expected ErrReservedClaim, got %v", key, err)
		}
	}
	for _, key := range []string{ClaimUsername, ClaimUserID, "role"} {
		if IsReservedClaim(key) {
			t.Fatalf("%s must be an application claim", key)
		}
	}
}

func TestCallerMapNotRetained(t *testing.T) {
	engine := newTestEngine(t, testConfig(), nil)

	extra := map[string]any{"role": "user"}
	tok, _ := engine.CreateAccessToken("42", extra)
	extra["role"] = "admin"

	got, err := ExtractClaim(engine, tok, func(c *Claims) string {
		v, _ := c.Extra.String("role")
		return v
	})
	if err != nil || got != "user" {
		t.Fatalf("role = %q, %v", got, err)
	}
	if _, ok := extra["jti"]; ok {
		t.Fatal("caller map was mutated")
	}
}

func TestClaimMapKeysSorted(t *testing.T) {
	m := ClaimMap{"b": 1, "a": 2, "c": 3}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Keys = %v", got)
	}
}
