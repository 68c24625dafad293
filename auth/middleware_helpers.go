package auth

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/mercato-io/mercato/middleware/bearerauth"
)

// ValidationListener aliases the bearerauth listener so consumers can use auth helpers directly.
type ValidationListener = bearerauth.ValidationListener

// TokenValidatorAdapter exposes a TokenService as the validator shape the
// bearer middleware expects.
type TokenValidatorAdapter struct {
	service TokenService
}

func NewTokenValidatorAdapter(service TokenService) *TokenValidatorAdapter {
	return &TokenValidatorAdapter{service: service}
}

func (a *TokenValidatorAdapter) Validate(tokenString string) (bearerauth.AuthClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ContextEnricherAdapter adapts bearerauth.AuthClaims to auth.AuthClaims and stores
// claims in the standard context for downstream guard usage.
func ContextEnricherAdapter(c context.Context, claims bearerauth.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	return WithClaimsContext(c, authClaims)
}

// IdentityCheckListener resolves the token subject against the identity
// store on every protected request. A signature can outlive the account it
// was issued for; a subject that no longer maps to a usable identity stops
// here instead of reaching the handler.
func IdentityCheckListener(provider IdentityProvider) ValidationListener {
	return func(ctx router.Context, claims bearerauth.AuthClaims) error {
		_, err := provider.FindIdentityByIdentifier(ctx.Context(), claims.Subject())
		return err
	}
}

// RegisterValidationListeners appends listeners to a bearerauth.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *bearerauth.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
