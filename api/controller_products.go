package api

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/store"
)

type ProductsController struct {
	Logger auth.Logger
	Repo   store.RepositoryManager
}

func NewProductsController(repo store.RepositoryManager, logger auth.Logger) *ProductsController {
	if repo == nil {
		panic("Missing RepositoryManager in products controller...")
	}

	if logger == nil {
		logger = auth.DefaultLogger()
	}

	return &ProductsController{
		Logger: logger,
		Repo:   repo,
	}
}

// ProductPayload carries catalog item fields
type ProductPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
}

// Validate will validate the payload
func (r ProductPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Price, validation.Required, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(0)),
	)
}

// List returns catalog items, optionally filtered by category.
func (c *ProductsController) List(ctx router.Context) error {
	category := ctx.Query("category", "")

	var (
		products []*store.Product
		err      error
	)

	if category != "" {
		products, err = c.Repo.Products().ListByCategory(ctx.Context(), category)
	} else {
		products, err = c.Repo.Products().List(ctx.Context())
	}

	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list products"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"products": products,
	})
}

// Get returns a single product.
func (c *ProductsController) Get(ctx router.Context) error {
	id := ctx.Param("id")

	product, err := c.Repo.Products().GetByID(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "product not found"))
	}

	return ctx.JSON(router.StatusOK, product)
}

// Create adds a catalog item, manager or above.
func (c *ProductsController) Create(ctx router.Context) error {
	payload := new(ProductPayload)

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

	product := &store.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Category:    payload.Category,
		Brand:       payload.Brand,
		Color:       payload.Color,
		Size:        payload.Size,
		Stock:       payload.Stock,
		ImageURL:    payload.ImageURL,
	}

	created, err := c.Repo.Products().Create(ctx.Context(), product)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create product"))
	}

	return ctx.JSON(router.StatusCreated, created)
}

// Update replaces product fields, manager or above.
func (c *ProductsController) Update(ctx router.Context) error {
	id := ctx.Param("id")

	product, err := c.Repo.Products().GetByID(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "product not found"))
	}

	payload := new(ProductPayload)
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

	product.Name = payload.Name
	product.Description = payload.Description
	product.Price = payload.Price
	product.Category = payload.Category
	product.Brand = payload.Brand
	product.Color = payload.Color
	product.Size = payload.Size
	product.Stock = payload.Stock
	product.ImageURL = payload.ImageURL

	updated, err := c.Repo.Products().Update(ctx.Context(), product)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update product"))
	}

	return ctx.JSON(router.StatusOK, updated)
}

// Delete removes a product, admin only.
func (c *ProductsController) Delete(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid product id",
		})
	}

	if err := c.Repo.Products().Delete(ctx.Context(), id); err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete product"))
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}
