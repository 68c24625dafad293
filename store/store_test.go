package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	ddl, err := GetMigrationsFS().ReadFile("data/sql/migrations/sqlite/20250601000000_init.up.sql")
	require.NoError(t, err)

	_, err = db.Exec(string(ddl))
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
		_ = sqldb.Close()
	}

	return db, cleanup
}

func seedUser(t *testing.T, repo Users, email string) *User {
	t.Helper()

	user, err := repo.Register(context.Background(), &User{
		FirstName:    "Alice",
		LastName:     "Doe",
		Username:     "alice-" + uuid.NewString()[:8],
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Enabled:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}

func seedProduct(t *testing.T, repo Products, name string, price float64, stock int) *Product {
	t.Helper()

	product, err := repo.Create(context.Background(), &Product{
		Name:     name,
		Price:    price,
		Stock:    stock,
		Category: "electronics",
	})
	require.NoError(t, err)
	require.NotNil(t, product)

	return product
}
