package auth

import (
	"context"
	"errors"
	"fmt"
)

// Role is the closed set of roles a caller can carry in its access token.
type Role string

const (
	RoleDataScientist Role = "DATA_SCIENTIST"
	RoleClinician     Role = "CLINICIAN"
)

// ParseRole maps a role code to a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDataScientist, RoleClinician:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %s", s)
}

// AccessClaims is the decoded payload of an access token, identifying the caller.
type AccessClaims struct {
	Subject string
	Email   string
	Role    Role
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("insufficient role")
)

type claimsContextKeyType struct{}

var claimsContextKey = claimsContextKeyType{}

// ClaimsFromContext returns the caller's claims from the request context.
func ClaimsFromContext(ctx context.Context) (AccessClaims, error) {
	claims, ok := ctx.Value(claimsContextKey).(AccessClaims)
	if !ok {
		return AccessClaims{}, ErrNotAuthenticated
	}
	return claims, nil
}

func WithClaims(ctx context.Context, claims AccessClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// RequireRole checks that the claims carry one of the allowed roles.
// An empty allow-list admits any authenticated caller.
func RequireRole(claims AccessClaims, allowed ...Role) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
