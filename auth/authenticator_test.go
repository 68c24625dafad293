package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/mercato-io/mercato/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuther(t *testing.T, provider auth.IdentityProvider) *auth.Auther {
	t.Helper()

	logger := &MockLogger{}
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()

	service := newTestTokenService(t, time.Hour)

	return auth.NewAuthenticator(provider, service).WithLogger(logger)
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice@example.com", "s3cret").
			Return(newTestIdentity(), nil)

		auther := newTestAuther(t, provider)

		token, err := auther.Login(ctx, "alice@example.com", "s3cret")

		require.NoError(t, err)
		require.NotEmpty(t, token)

		// the issued token validates against the same service
		claims, err := auther.TokenService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "admin", claims.Role())

		provider.AssertExpectations(t)
	})

	t.Run("unknown identifier and wrong password are indistinguishable", func(t *testing.T) {
		unknown := &MockIdentityProvider{}
		unknown.On("VerifyIdentity", ctx, "ghost@example.com", "whatever").
			Return(nil, auth.ErrIdentityNotFound)

		wrongPwd := &MockIdentityProvider{}
		wrongPwd.On("VerifyIdentity", ctx, "alice@example.com", "bad-password").
			Return(nil, auth.ErrMismatchedHashAndPassword)

		_, errUnknown := newTestAuther(t, unknown).Login(ctx, "ghost@example.com", "whatever")
		_, errWrong := newTestAuther(t, wrongPwd).Login(ctx, "alice@example.com", "bad-password")

		require.Error(t, errUnknown)
		require.Error(t, errWrong)
		assert.Equal(t, auth.ErrInvalidCredentials, errUnknown)
		assert.Equal(t, errUnknown, errWrong)
	})

	t.Run("cooldown rejection passes through", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice@example.com", "s3cret").
			Return(nil, auth.ErrTooManyLoginAttempts)

		token, err := newTestAuther(t, provider).Login(ctx, "alice@example.com", "s3cret")

		assert.Empty(t, token)
		assert.True(t, auth.IsTooManyAttemptsError(err))
	})

	t.Run("nil identity without error still fails closed", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice@example.com", "s3cret").
			Return(nil, nil)

		token, err := newTestAuther(t, provider).Login(ctx, "alice@example.com", "s3cret")

		assert.Empty(t, token)
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})
}

func TestAuther_IdentityFromToken(t *testing.T) {
	ctx := context.Background()

	issueToken := func(t *testing.T, auther *auth.Auther) string {
		t.Helper()
		token, err := auther.TokenService().Generate(newTestIdentity())
		require.NoError(t, err)
		return token
	}

	t.Run("resolves the token subject to an identity", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice@example.com").
			Return(newTestIdentity(), nil)

		auther := newTestAuther(t, provider)
		token := issueToken(t, auther)

		identity, err := auther.IdentityFromToken(ctx, token)

		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, "user-123", identity.ID())

		provider.AssertExpectations(t)
	})

	t.Run("valid token with a vanished subject fails", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice@example.com").
			Return(nil, auth.ErrIdentityNotFound)

		auther := newTestAuther(t, provider)
		token := issueToken(t, auther)

		identity, err := auther.IdentityFromToken(ctx, token)

		assert.Nil(t, identity)
		assert.Equal(t, auth.ErrIdentityNotFound, err)
	})

	t.Run("invalid token never reaches the provider", func(t *testing.T) {
		provider := &MockIdentityProvider{}

		auther := newTestAuther(t, provider)

		identity, err := auther.IdentityFromToken(ctx, "garbage")

		assert.Nil(t, identity)
		assert.Error(t, err)
		provider.AssertNotCalled(t, "FindIdentityByIdentifier", mock.Anything, mock.Anything)
	})
}
