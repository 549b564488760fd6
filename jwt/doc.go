// Package jwt signs and verifies HS256 compact tokens with strict parsing:
// the algorithm is pinned, exp is mandatory, and expiry failures are reported
// separately from every other verification failure.
package jwt
