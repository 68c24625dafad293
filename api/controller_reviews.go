package api

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/store"
)

type ReviewsController struct {
	Logger     auth.Logger
	Repo       store.RepositoryManager
	ContextKey string
}

func NewReviewsController(repo store.RepositoryManager, logger auth.Logger) *ReviewsController {
	if repo == nil {
		panic("Missing RepositoryManager in reviews controller...")
	}

	if logger == nil {
		logger = auth.DefaultLogger()
	}

	return &ReviewsController{
		Logger:     logger,
		Repo:       repo,
		ContextKey: "user",
	}
}

// ReviewPayload is the review creation body
type ReviewPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate will validate the payload
func (r ReviewPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Comment, validation.Length(0, 1000)),
	)
}

// ListByProduct returns every review for a product, public.
func (c *ReviewsController) ListByProduct(ctx router.Context) error {
	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid product id",
		})
	}

	reviews, err := c.Repo.Reviews().ListByProduct(ctx.Context(), productID)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list reviews"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"reviews": reviews,
	})
}

// Create attaches a review to a product for the authenticated customer.
func (c *ReviewsController) Create(ctx router.Context) error {
	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid product id",
		})
	}

	payload := new(ReviewPayload)
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

	// the product must exist before we attach anything to it
	product, err := c.Repo.Products().GetByID(ctx.Context(), productID.String())
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "product not found"))
	}

	user, err := c.Repo.Users().GetByIdentifier(ctx.Context(), claims.Subject())
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "reviewer not found"))
	}

	review := &store.Review{
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		UserID:    user.ID,
		ProductID: product.ID,
	}

	created, err := c.Repo.Reviews().Create(ctx.Context(), review)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create review"))
	}

	return ctx.JSON(router.StatusCreated, created)
}
