package store

import (
	"context"
	"testing"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/mercato-io/mercato/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepositoryManager(db)
	handler := NewRegisterUserHandler(repo)
	ctx := context.Background()

	t.Run("registers a user with hashed credentials", func(t *testing.T) {
		user, err := handler.Execute(ctx, RegisterUserMessage{
			FirstName: "Alice",
			LastName:  "Doe",
			Email:     "alice@example.com",
			Password:  "s3cret-password",
		})

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, auth.RoleCustomer, user.Role)
		assert.True(t, user.Enabled)

		// username falls back to the email local part
		assert.Equal(t, "alice", user.Username)

		// the password is stored hashed, never in the clear
		assert.NotEqual(t, "s3cret-password", user.PasswordHash)
		assert.NoError(t, auth.ComparePasswordAndHash("s3cret-password", user.PasswordHash))
	})

	t.Run("an unknown role falls back to customer", func(t *testing.T) {
		user, err := handler.Execute(ctx, RegisterUserMessage{
			Email:    "bob@example.com",
			Password: "s3cret-password",
			Role:     "superuser",
		})

		require.NoError(t, err)
		assert.Equal(t, auth.RoleCustomer, user.Role)
	})

	t.Run("a valid role is honored", func(t *testing.T) {
		user, err := handler.Execute(ctx, RegisterUserMessage{
			Email:    "meg@example.com",
			Password: "s3cret-password",
			Role:     "manager",
		})

		require.NoError(t, err)
		assert.Equal(t, auth.RoleManager, user.Role)
	})

	t.Run("hashid gives deterministic ids", func(t *testing.T) {
		user, err := handler.Execute(ctx, RegisterUserMessage{
			Email:     "carl@example.com",
			Password:  "s3cret-password",
			UseHashid: true,
		})

		require.NoError(t, err)

		expected, err := hashid.NewUUID("carl@example.com")
		require.NoError(t, err)
		assert.Equal(t, expected, user.ID)
	})

	t.Run("empty password fails before touching storage", func(t *testing.T) {
		_, err := handler.Execute(ctx, RegisterUserMessage{
			Email: "ghost@example.com",
		})

		require.Error(t, err)

		_, err = repo.Users().GetByIdentifier(ctx, "ghost@example.com")
		assert.Error(t, err)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := handler.Execute(ctx, RegisterUserMessage{
			Email:    "alice@example.com",
			Username: "alice-again",
			Password: "s3cret-password",
		})

		assert.Error(t, err)
	})
}

func TestPlaceOrderHandler(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepositoryManager(db)
	handler := NewPlaceOrderHandler(repo)
	ctx := context.Background()

	customer := seedUser(t, repo.Users(), "alice@example.com")
	laptop := seedProduct(t, repo.Products(), "Laptop", 1000, 5)
	phone := seedProduct(t, repo.Products(), "Phone", 500, 2)

	currentStock := func(t *testing.T, id uuid.UUID) int {
		t.Helper()
		product, err := repo.Products().GetByID(ctx, id.String())
		require.NoError(t, err)
		return product.Stock
	}

	t.Run("places an order transactionally", func(t *testing.T) {
		order, err := handler.Execute(ctx, PlaceOrderMessage{
			CustomerID: customer.ID,
			Items: []PlaceOrderItem{
				{ProductID: laptop.ID, Quantity: 2},
				{ProductID: phone.ID, Quantity: 1},
			},
		})

		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, OrderStatusPending, order.Status)
		assert.Equal(t, customer.ID, order.CustomerID)
		assert.Equal(t, 2500.0, order.TotalAmount)
		assert.Len(t, order.Items, 2)

		// the line price is captured at placement time
		assert.Equal(t, 1000.0, order.Items[0].UnitPrice)

		assert.Equal(t, 3, currentStock(t, laptop.ID))
		assert.Equal(t, 1, currentStock(t, phone.ID))

		found, err := repo.Orders().GetByReference(ctx, order.Reference)
		require.NoError(t, err)
		assert.Len(t, found.Items, 2)
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		before, err := repo.Orders().ListByCustomer(ctx, customer.ID)
		require.NoError(t, err)

		_, err = handler.Execute(ctx, PlaceOrderMessage{
			CustomerID: customer.ID,
			Items: []PlaceOrderItem{
				{ProductID: laptop.ID, Quantity: 1},
				{ProductID: phone.ID, Quantity: 50},
			},
		})

		require.Error(t, err)

		// the laptop decrement from the failed order did not stick
		assert.Equal(t, 3, currentStock(t, laptop.ID))
		assert.Equal(t, 1, currentStock(t, phone.ID))

		after, err := repo.Orders().ListByCustomer(ctx, customer.ID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("rejects an empty order", func(t *testing.T) {
		_, err := handler.Execute(ctx, PlaceOrderMessage{
			CustomerID: customer.ID,
		})

		assert.Error(t, err)
	})

	t.Run("rejects a non positive quantity", func(t *testing.T) {
		_, err := handler.Execute(ctx, PlaceOrderMessage{
			CustomerID: customer.ID,
			Items: []PlaceOrderItem{
				{ProductID: laptop.ID, Quantity: 0},
			},
		})

		assert.Error(t, err)
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		_, err := handler.Execute(ctx, PlaceOrderMessage{
			CustomerID: customer.ID,
			Items: []PlaceOrderItem{
				{ProductID: uuid.New(), Quantity: 1},
			},
		})

		require.Error(t, err)
		assert.Equal(t, 3, currentStock(t, laptop.ID))
	})

	t.Run("rejects an unknown customer", func(t *testing.T) {
		_, err := handler.Execute(ctx, PlaceOrderMessage{
			CustomerID: uuid.New(),
			Items: []PlaceOrderItem{
				{ProductID: laptop.ID, Quantity: 1},
			},
		})

		assert.Error(t, err)
	})
}
