package api_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/mercato-io/mercato/api"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/store"

	_ "github.com/mattn/go-sqlite3"
)

func newUsersFixture(t *testing.T) (store.RepositoryManager, func()) {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ddl, err := store.GetMigrationsFS().ReadFile("data/sql/migrations/sqlite/20250601000000_init.up.sql")
	require.NoError(t, err)

	_, err = db.Exec(string(ddl))
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
		_ = sqldb.Close()
	}

	return store.NewRepositoryManager(db), cleanup
}

func selfClaims(userID, email string) *auth.JWTClaims {
	return &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
		UID:              userID,
		UserRole:         "customer",
	}
}

func TestUsersController_Get(t *testing.T) {
	repo, cleanup := newUsersFixture(t)
	defer cleanup()

	user, err := repo.Users().Register(context.Background(), &store.User{
		FirstName:    "Carol",
		LastName:     "Doe",
		Username:     "carol",
		Email:        "carol@example.com",
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)

	controller := api.NewUsersController(repo, nil)

	newCtx := func(id string, claims *auth.JWTClaims, rec *jsonRecorder) *router.MockContext {
		ctx := router.NewMockContext()
		ctx.ParamsM["id"] = id
		ctx.LocalsMock["user"] = claims
		ctx.On("Context").Return(context.Background()).Maybe()
		ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			rec.status, _ = args.Get(0).(int)
			rec.body = args.Get(1)
		}).Return(nil)
		return ctx
	}

	claims := selfClaims(user.ID.String(), user.Email)

	t.Run("self lookup by id", func(t *testing.T) {
		rec := &jsonRecorder{}
		ctx := newCtx(user.ID.String(), claims, rec)

		require.NoError(t, controller.Get(ctx))
		assert.Equal(t, router.StatusOK, rec.status)
	})

	t.Run("self lookup by login email", func(t *testing.T) {
		rec := &jsonRecorder{}
		ctx := newCtx(user.Email, claims, rec)

		require.NoError(t, controller.Get(ctx))
		assert.Equal(t, router.StatusOK, rec.status)
	})

	t.Run("another account stays forbidden", func(t *testing.T) {
		rec := &jsonRecorder{}
		ctx := newCtx("someone-else@example.com", claims, rec)

		require.NoError(t, controller.Get(ctx))
		assert.Equal(t, router.StatusForbidden, rec.status)
	})

	t.Run("admins can fetch anyone", func(t *testing.T) {
		admin := selfClaims("admin-1", "root@example.com")
		admin.UserRole = "admin"

		rec := &jsonRecorder{}
		ctx := newCtx(user.Email, admin, rec)

		require.NoError(t, controller.Get(ctx))
		assert.Equal(t, router.StatusOK, rec.status)
	})
}

func TestUsersController_Update_SelfByEmail(t *testing.T) {
	repo, cleanup := newUsersFixture(t)
	defer cleanup()

	user, err := repo.Users().Register(context.Background(), &store.User{
		FirstName:    "Dave",
		LastName:     "Doe",
		Username:     "dave",
		Email:        "dave@example.com",
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)

	controller := api.NewUsersController(repo, nil)
	claims := selfClaims(user.ID.String(), user.Email)

	rec := &jsonRecorder{}
	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = user.Email
	ctx.LocalsMock["user"] = claims
	ctx.On("Context").Return(context.Background()).Maybe()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload, ok := args.Get(0).(*api.UpdatePayload)
		require.True(t, ok)
		payload.Address = "1 Main St"
	}).Return(nil)
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		rec.status, _ = args.Get(0).(int)
		rec.body = args.Get(1)
	}).Return(nil)

	require.NoError(t, controller.Update(ctx))
	assert.Equal(t, router.StatusOK, rec.status)

	reloaded, err := repo.Users().GetByIdentifier(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", reloaded.Address)
}
