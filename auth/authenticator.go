package auth

import (
	"context"
	"reflect"
)

// Auther turns login attempts into signed tokens and tokens back into
// identities. It keeps no per-request state; everything it holds is
// read-only after construction.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, tokenService TokenService) *Auther {
	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and issues a token. Every verification
// failure collapses into ErrInvalidCredentials so callers cannot tell an
// unknown identifier from a wrong password.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		if IsTooManyAttemptsError(err) {
			return "", err
		}
		return "", ErrInvalidCredentials
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return "", err
	}

	return token, nil
}

// IdentityFromToken validates the raw token and resolves its subject to a
// live identity. A subject that no longer resolves is a failure even when
// the token itself verifies.
func (s *Auther) IdentityFromToken(ctx context.Context, raw string) (Identity, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("IdentityFromToken validation failed", "error", err)
		return nil, err
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("IdentityFromToken resolve subject failed", "error", err)
		return nil, ErrIdentityNotFound
	}

	return identity, nil
}

// IsTooManyAttemptsError checks for the login cooldown rejection
func IsTooManyAttemptsError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, ErrTooManyLoginAttempts.TextCode)
}
