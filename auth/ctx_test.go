package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/mercato-io/mercato/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsForRole(role string) *auth.JWTClaims {
	return &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "alice@example.com",
		},
		UID:      "user-123",
		UserRole: role,
	}
}

func TestWithClaimsContext(t *testing.T) {
	t.Run("attaches claims to context", func(t *testing.T) {
		ctx := auth.WithClaimsContext(context.Background(), claimsForRole("admin"))

		claims, ok := auth.GetClaims(ctx)
		require.True(t, ok)
		assert.Equal(t, "alice@example.com", claims.Subject())
		assert.Equal(t, "admin", claims.Role())
	})

	t.Run("attach is idempotent, first claims win", func(t *testing.T) {
		ctx := auth.WithClaimsContext(context.Background(), claimsForRole("admin"))
		ctx = auth.WithClaimsContext(ctx, claimsForRole("customer"))

		claims, ok := auth.GetClaims(ctx)
		require.True(t, ok)
		assert.Equal(t, "admin", claims.Role())
	})

	t.Run("empty context has no claims", func(t *testing.T) {
		claims, ok := auth.GetClaims(context.Background())

		assert.False(t, ok)
		assert.Nil(t, claims)
	})
}

func TestGetRouterClaims(t *testing.T) {
	t.Run("returns claims under the default key", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = claimsForRole("admin")

		claims, ok := auth.GetRouterClaims(ctx, "")

		require.True(t, ok)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("returns claims under a custom key", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["identity"] = claimsForRole("manager")

		claims, ok := auth.GetRouterClaims(ctx, "identity")

		require.True(t, ok)
		assert.Equal(t, "manager", claims.Role())
	})

	t.Run("missing key yields no claims", func(t *testing.T) {
		ctx := router.NewMockContext()

		claims, ok := auth.GetRouterClaims(ctx, "user")

		assert.False(t, ok)
		assert.Nil(t, claims)
	})

	t.Run("wrong type yields no claims", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = "not-claims"

		claims, ok := auth.GetRouterClaims(ctx, "user")

		assert.False(t, ok)
		assert.Nil(t, claims)
	})
}

func TestCan(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		permission string
		want       bool
	}{
		{"customer can read", "customer", "read", true},
		{"customer cannot create", "customer", "create", false},
		{"manager can edit", "manager", "edit", true},
		{"manager cannot delete", "manager", "delete", false},
		{"admin can delete", "admin", "delete", true},
		{"unknown permission denied", "admin", "reboot", false},
		{"unknown role denied", "intruder", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := auth.WithClaimsContext(context.Background(), claimsForRole(tt.role))
			assert.Equal(t, tt.want, auth.Can(ctx, tt.permission))
		})
	}

	t.Run("no claims denies everything", func(t *testing.T) {
		assert.False(t, auth.Can(context.Background(), "read"))
	})
}

func TestCanFromRouter(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = claimsForRole("manager")

	assert.True(t, auth.CanFromRouter(ctx, "edit"))
	assert.False(t, auth.CanFromRouter(ctx, "delete"))

	empty := router.NewMockContext()
	assert.False(t, auth.CanFromRouter(empty, "read"))
}
