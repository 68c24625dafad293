package store

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Products interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Product, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*Product, error)
	Create(ctx context.Context, record *Product, criteria ...repository.InsertCriteria) (*Product, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Product, criteria ...repository.InsertCriteria) (*Product, error)
	Update(ctx context.Context, record *Product, criteria ...repository.UpdateCriteria) (*Product, error)

	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, tx bun.IDB, id uuid.UUID, delta int) error
}

type products struct {
	repository.Repository[*Product]
	db *bun.DB
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &products{
		Repository: repo,
		db:         db,
	}
}

func (r *products) Create(ctx context.Context, record *Product, criteria ...repository.InsertCriteria) (*Product, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *products) CreateTx(ctx context.Context, tx bun.IDB, record *Product, criteria ...repository.InsertCriteria) (*Product, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *products) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Product, error) {
	var records []*Product
	q := r.db.NewSelect().Model(&records)

	for _, c := range criteria {
		q.Apply(c)
	}

	if err := q.Order("prd.created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *products) ListByCategory(ctx context.Context, category string) ([]*Product, error) {
	var records []*Product
	err := r.db.NewSelect().
		Model(&records).
		Where("prd.category = ?", category).
		Order("prd.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *products) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// AdjustStock applies a stock delta and refuses to go negative. Callers run
// it inside the order transaction so a failed order leaves stock untouched.
func (r *products) AdjustStock(ctx context.Context, tx bun.IDB, id uuid.UUID, delta int) error {
	res, err := tx.NewUpdate().
		Model((*Product)(nil)).
		Set("stock = stock + ?", delta).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
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
				"product_id": id.String(),
				"delta":      delta,
			})
	}

	return nil
}
