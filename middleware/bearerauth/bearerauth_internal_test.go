package bearerauth

import (
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/require"
)

func TestGetExtractors(t *testing.T) {
	t.Run("parses a single lookup", func(t *testing.T) {
		extractors := GetExtractors("header:Authorization")
		require.Len(t, extractors, 1)
	})

	t.Run("parses a comma separated chain", func(t *testing.T) {
		extractors := GetExtractors("header:Authorization,cookie:jwt,query:auth_token,param:token")
		require.Len(t, extractors, 4)
	})

	t.Run("tolerates whitespace", func(t *testing.T) {
		extractors := GetExtractors(" header : Authorization , cookie : jwt ")
		require.Len(t, extractors, 2)
	})

	t.Run("ignores unknown sources", func(t *testing.T) {
		extractors := GetExtractors("body:token")
		require.Empty(t, extractors)
	})
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/products":   "/api/products",
		"/api/products/":  "/api/products",
		"/api/products//": "/api/products",
		"/":               "/",
		"":                "",
	}

	for in, want := range cases {
		require.Equal(t, want, normalizePath(in), "path %q", in)
	}
}

func TestTokenFromHeader(t *testing.T) {
	extract := tokenFromHeader(router.HeaderAuthorization, "Bearer")

	t.Run("strips the scheme", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer abc.def.ghi")

		token, err := extract(ctx)
		require.NoError(t, err)
		require.Equal(t, "abc.def.ghi", token)
	})

	t.Run("scheme comparison is case insensitive", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", router.HeaderAuthorization, "").Return("bearer abc.def.ghi")

		token, err := extract(ctx)
		require.NoError(t, err)
		require.Equal(t, "abc.def.ghi", token)
	})

	t.Run("missing header fails", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", router.HeaderAuthorization, "").Return("")

		_, err := extract(ctx)
		require.ErrorIs(t, err, ErrTokenMissingOrMalformed)
	})

	t.Run("scheme without a token fails", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer")

		_, err := extract(ctx)
		require.ErrorIs(t, err, ErrTokenMissingOrMalformed)
	})
}

func TestTokenFromCookie(t *testing.T) {
	extract := tokenFromCookie("jwt")

	ctx := router.NewMockContext()
	ctx.CookiesM["jwt"] = "abc.def.ghi"

	token, err := extract(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	empty := router.NewMockContext()
	_, err = extract(empty)
	require.ErrorIs(t, err, ErrTokenMissingOrMalformed)
}
