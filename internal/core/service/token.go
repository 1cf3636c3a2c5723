package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by InspectToken for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenInfo is what the client can read from a bearer token without the
// server's key. None of it is verified.
type TokenInfo struct {
	Algorithm string     `json:"algorithm" yaml:"algorithm"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Role      string     `json:"role,omitempty" yaml:"role,omitempty"`
	Issuer    string     `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   bool       `json:"expired" yaml:"expired"`
}

// InspectToken decodes the claims of a JWT bearer token without verifying
// its signature. It is used for display only and never gates a request.
func InspectToken(token string, now time.Time) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	info := &TokenInfo{Algorithm: parsed.Method.Alg()}
	// Some servers issue numeric subjects; show them as-is.
	if sub, ok := claims["sub"]; ok && sub != nil {
		info.Subject = fmt.Sprint(sub)
	}
	info.Issuer, _ = claims.GetIssuer()
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		info.Expired = !now.Before(t)
	}
	return info, nil
}
