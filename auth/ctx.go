package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext attaches the AuthClaims to the given context. Exactly
// one identity context may exist per request: if claims are already
// attached the context is returned unchanged.
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	if _, ok := GetClaims(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user" // Default key used by the bearer middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// Can is a convenience function to check permissions directly from the
// standard context. Use CanFromRouter for router-based contexts.
func Can(ctx context.Context, permission string) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return roleAllows(UserRole(claims.Role()), permission)
}

// CanFromRouter is a convenience function to check permissions directly
// from the router context
func CanFromRouter(ctx router.Context, permission string) bool {
	claims, ok := GetRouterClaims(ctx, "")
	if !ok {
		return false
	}
	return roleAllows(UserRole(claims.Role()), permission)
}

func roleAllows(role UserRole, permission string) bool {
	switch permission {
	case "read":
		return role.CanRead()
	case "edit":
		return role.CanEdit()
	case "create":
		return role.CanCreate()
	case "delete":
		return role.CanDelete()
	default:
		return false
	}
}
