package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// MinSigningKeyBytes is the smallest signing key we accept. HS256 needs a
// key at least as long as the hash output; anything shorter weakens the MAC.
const MinSigningKeyBytes = 32

// TokenService issues and validates self-contained signed tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	GenerateAt(identity Identity, issuedAt time.Time) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	ValidateAt(tokenString string, now time.Time) (AuthClaims, error)
}

// TokenValidator validates raw token strings into structured claims
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService. The signing key is the
// base64-encoded shared secret; an undersized key is a construction error
// so the process never starts with a degraded signer.
func NewTokenService(signingKey string, ttl time.Duration, issuer string, audience []string, logger Logger) (*TokenServiceImpl, error) {
	if logger == nil {
		logger = defLogger{}
	}

	key, err := base64.StdEncoding.DecodeString(signingKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "signing key is not valid base64")
	}

	if len(key) < MinSigningKeyBytes {
		return nil, errors.New("signing key is too short", errors.CategoryBadInput).
			WithMetadata(map[string]any{
				"key_bytes": len(key),
				"min_bytes": MinSigningKeyBytes,
			})
	}

	if ttl <= 0 {
		return nil, errors.New("token TTL must be positive", errors.CategoryBadInput)
	}

	return &TokenServiceImpl{
		signingKey: key,
		ttl:        ttl,
		issuer:     issuer,
		audience:   jwt.ClaimStrings(audience),
		logger:     logger,
	}, nil
}

// Generate creates a signed token for the given identity
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	return ts.GenerateAt(identity, time.Now())
}

// GenerateAt creates a signed token with an explicit issuance instant.
// The subject is the identity's email; expiry is issuedAt plus the
// configured TTL.
func (ts *TokenServiceImpl) GenerateAt(identity Identity, issuedAt time.Time) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryBadInput)
	}

	subject := identity.Email()
	if subject == "" {
		return "", errors.New("token subject must not be empty", errors.CategoryValidation)
	}

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ts.ttl)),
		},
		UID:      identity.ID(),
		UserRole: identity.Role(),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	return ts.validate(tokenString, nil)
}

// ValidateAt validates a token against an explicit clock instead of the
// wall clock. Validation is a pure computation; nothing is looked up.
func (ts *TokenServiceImpl) ValidateAt(tokenString string, now time.Time) (AuthClaims, error) {
	return ts.validate(tokenString, func() time.Time { return now })
}

func (ts *TokenServiceImpl) validate(tokenString string, clock func() time.Time) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}
	if clock != nil {
		parserOptions = append(parserOptions, jwt.WithTimeFunc(clock))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, errors.New("unable to decode token claims", errors.CategoryAuth).
		WithTextCode(ErrTokenMalformed.TextCode)
}

// TTL exposes the configured token lifetime
func (ts *TokenServiceImpl) TTL() time.Duration {
	return ts.ttl
}
