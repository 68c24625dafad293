package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Orders interface {
	CreateTx(ctx context.Context, tx bun.IDB, record *Order, criteria ...repository.InsertCriteria) (*Order, error)

	GetByReference(ctx context.Context, reference string) (*Order, error)
	GetByReferenceTx(ctx context.Context, tx bun.IDB, reference string) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)
	DeleteByReference(ctx context.Context, reference string) error
	CreateItemsTx(ctx context.Context, tx bun.IDB, items []*OrderItem) error
}

type orders struct {
	repository.Repository[*Order]
	db *bun.DB
}

var _ Orders = (*orders)(nil)

func NewOrdersRepository(db *bun.DB) Orders {
	repo := repository.NewRepository[*Order](db, repository.ModelHandlers[*Order]{
		NewRecord: func() *Order { return &Order{} },
		GetID: func(o *Order) uuid.UUID {
			if o == nil {
				return uuid.Nil
			}
			return o.ID
		},
		SetID: func(o *Order, id uuid.UUID) {
			if o != nil {
				o.ID = id
			}
		},
		GetIdentifier: func() string {
			return "reference"
		},
	})

	return &orders{
		Repository: repo,
		db:         db,
	}
}

func (r *orders) GetByReference(ctx context.Context, reference string) (*Order, error) {
	return r.GetByReferenceTx(ctx, r.db, reference)
}

func (r *orders) GetByReferenceTx(ctx context.Context, tx bun.IDB, reference string) (*Order, error) {
	record := &Order{}
	err := tx.NewSelect().
		Model(record).
		Relation("Items").
		Where("ord.reference = ?", strings.TrimSpace(reference)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"reference": reference,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *orders) List(ctx context.Context) ([]*Order, error) {
	var records []*Order
	err := r.db.NewSelect().
		Model(&records).
		Relation("Items").
		Order("ord.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *orders) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	var records []*Order
	err := r.db.NewSelect().
		Model(&records).
		Relation("Items").
		Where("ord.customer_id = ?", customerID).
		Order("ord.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *orders) DeleteByReference(ctx context.Context, reference string) error {
	res, err := r.db.NewDelete().
		Model((*Order)(nil)).
		Where("reference = ?", strings.TrimSpace(reference)).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"reference": reference,
			})
	}

	return nil
}

func (r *orders) CreateItemsTx(ctx context.Context, tx bun.IDB, items []*OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
	}

	_, err := tx.NewInsert().Model(&items).Exec(ctx)
	return err
}

// NewOrderReference derives a short customer-facing handle from the customer
// and placement time. The same inputs always produce the same handle.
func NewOrderReference(customerID uuid.UUID, at time.Time) (string, error) {
	seed := fmt.Sprintf("%s:%d", customerID.String(), at.UnixNano())
	id, err := hashid.NewUUID(seed)
	if err != nil {
		return "", err
	}

	return "ORD-" + strings.ToUpper(strings.Split(id.String(), "-")[0]), nil
}
