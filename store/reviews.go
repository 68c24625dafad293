package store

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Reviews interface {
	repository.Repository[*Review]

	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error)
}

type reviews struct {
	repository.Repository[*Review]
	db *bun.DB
}

var _ Reviews = (*reviews)(nil)

func NewReviewsRepository(db *bun.DB) Reviews {
	repo := repository.NewRepository[*Review](db, repository.ModelHandlers[*Review]{
		NewRecord: func() *Review { return &Review{} },
		GetID: func(r *Review) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Review, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &reviews{
		Repository: repo,
		db:         db,
	}
}

func (r *reviews) Create(ctx context.Context, record *Review, criteria ...repository.InsertCriteria) (*Review, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *reviews) CreateTx(ctx context.Context, tx bun.IDB, record *Review, criteria ...repository.InsertCriteria) (*Review, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *reviews) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error) {
	var records []*Review
	err := r.db.NewSelect().
		Model(&records).
		Where("rev.product_id = ?", productID).
		Order("rev.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
