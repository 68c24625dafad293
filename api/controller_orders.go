package api

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/store"
)

type OrdersController struct {
	Logger     auth.Logger
	Repo       store.RepositoryManager
	ContextKey string
}

func NewOrdersController(repo store.RepositoryManager, logger auth.Logger) *OrdersController {
	if repo == nil {
		panic("Missing RepositoryManager in orders controller...")
	}

	if logger == nil {
		logger = auth.DefaultLogger()
	}

	return &OrdersController{
		Logger:     logger,
		Repo:       repo,
		ContextKey: "user",
	}
}

// OrderItemPayload is a single requested line
type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderPayload is the order creation body
type PlaceOrderPayload struct {
	Items []OrderItemPayload `json:"items"`
}

// Validate will validate the payload
func (r PlaceOrderPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Required, validation.Length(1, 100)),
	)
}

// Place creates an order for the authenticated customer.
func (c *OrdersController) Place(ctx router.Context) error {
	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	payload := new(PlaceOrderPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	customer, err := c.Repo.Users().GetByIdentifier(ctx.Context(), claims.Subject())
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "customer not found"))
	}

	items := make([]store.PlaceOrderItem, 0, len(payload.Items))
	for _, line := range payload.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid product id",
			})
		}
		items = append(items, store.PlaceOrderItem{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	handler := store.NewPlaceOrderHandler(c.Repo)
	order, err := handler.Execute(ctx.Context(), store.PlaceOrderMessage{
		CustomerID: customer.ID,
		Items:      items,
	})
	if err != nil {
		c.Logger.Error("place order error", "error", err)
		return respondError(ctx, c.Logger, err)
	}

	return ctx.JSON(router.StatusCreated, order)
}

// Get returns an order by its reference. Customers only see their own.
func (c *OrdersController) Get(ctx router.Context) error {
	reference := ctx.Param("reference")

	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	order, err := c.Repo.Orders().GetByReference(ctx.Context(), reference)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "order not found"))
	}

	if !claims.IsAtLeast(string(auth.RoleAdmin)) && order.CustomerID.String() != claims.UserID() {
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": "forbidden",
		})
	}

	return ctx.JSON(router.StatusOK, order)
}

// List returns orders. Admins see every order, customers see their own.
func (c *OrdersController) List(ctx router.Context) error {
	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	if claims.IsAtLeast(string(auth.RoleAdmin)) {
		orders, err := c.Repo.Orders().List(ctx.Context())
		if err != nil {
			return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list orders"))
		}
		return ctx.JSON(router.StatusOK, map[string]any{"orders": orders})
	}

	customerID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	orders, err := c.Repo.Orders().ListByCustomer(ctx.Context(), customerID)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list orders"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{"orders": orders})
}

// Delete cancels an order by reference. Customers can only cancel their own.
func (c *OrdersController) Delete(ctx router.Context) error {
	reference := ctx.Param("reference")

	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	order, err := c.Repo.Orders().GetByReference(ctx.Context(), reference)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "order not found"))
	}

	if !claims.IsAtLeast(string(auth.RoleAdmin)) && order.CustomerID.String() != claims.UserID() {
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": "forbidden",
		})
	}

	if err := c.Repo.Orders().DeleteByReference(ctx.Context(), reference); err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete order"))
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}
