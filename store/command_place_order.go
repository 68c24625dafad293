package store

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type PlaceOrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type PlaceOrderMessage struct {
	CustomerID uuid.UUID        `json:"customer_id"`
	Items      []PlaceOrderItem `json:"items"`
}

func (e PlaceOrderMessage) Type() string { return "order.place" }

type PlaceOrderHandler struct {
	repo RepositoryManager
}

func NewPlaceOrderHandler(repo RepositoryManager) *PlaceOrderHandler {
	return &PlaceOrderHandler{repo: repo}
}

// Execute places an order in a single transaction. The order row, its line
// items, and the stock decrements all commit together or not at all.
func (h *PlaceOrderHandler) Execute(ctx context.Context, event PlaceOrderMessage) (*Order, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during order placement",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *PlaceOrderHandler) execute(ctx context.Context, event PlaceOrderMessage) (*Order, error) {
	if len(event.Items) == 0 {
		return nil, goerrors.New("order has no items", goerrors.CategoryValidation).
			WithTextCode("EMPTY_ORDER")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	order := &Order{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		customer, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.CustomerID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryNotFound, "order customer not found")
		}

		now := time.Now()
		reference, err := NewOrderReference(customer.ID, now)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build order reference")
		}

		order.ID = uuid.New()
		order.Reference = reference
		order.Status = OrderStatusPending
		order.CustomerID = customer.ID
		order.OrderedAt = &now

		items := make([]*OrderItem, 0, len(event.Items))
		var total float64

		for _, line := range event.Items {
			if line.Quantity <= 0 {
				return goerrors.New("order line quantity must be positive", goerrors.CategoryValidation).
					WithTextCode("BAD_QUANTITY").
					WithMetadata(map[string]any{"product_id": line.ProductID.String()})
			}

			product, err := h.repo.Products().GetByIDTx(ctx, tx, line.ProductID.String())
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryNotFound, "order line product not found")
			}

			if err := h.repo.Products().AdjustStock(ctx, tx, product.ID, -line.Quantity); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryConflict, "insufficient stock for product")
			}

			items = append(items, &OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
			total += product.Price * float64(line.Quantity)
		}

		order.TotalAmount = total

		if order, err = h.repo.Orders().CreateTx(ctx, tx, order); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create order")
		}

		if err := h.repo.Orders().CreateItemsTx(ctx, tx, items); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create order items")
		}

		order.Items = items
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "order placement transaction failed")
	}

	return order, nil
}
