package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
)

var _ repository.FeaturedListingRepository = (*featuredRepo)(nil)

type featuredRepo struct{ pool *pgxpool.Pool }

func NewFeaturedRepo(pool *pgxpool.Pool) *featuredRepo {
	return &featuredRepo{pool: pool}
}

const featuredColumns = `id, listing_id, plan_id, payment_id, start_at, end_at, created_at`

func scanFeatured(row pgx.Row) (*model.FeaturedListing, error) {
	f := &model.FeaturedListing{}
	if err := row.Scan(&f.ID, &f.ListingID, &f.PlanID, &f.PaymentID, &f.StartAt, &f.EndAt, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return f, nil
}

func (r *featuredRepo) Save(ctx context.Context, tx repository.Tx, f *model.FeaturedListing) error {
	const q = `
INSERT INTO featured_listings (` + featuredColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	if _, err := execSQL(ctx, r.pool, tx, q, f.ID, f.ListingID, f.PlanID, f.PaymentID, f.StartAt, f.EndAt, f.CreatedAt); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *featuredRepo) FindActiveByListing(ctx context.Context, tx repository.Tx, listingID string) (*model.FeaturedListing, error) {
	q := `SELECT ` + featuredColumns + ` FROM featured_listings WHERE listing_id=$1 AND end_at > NOW()`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+" LIMIT 1;", listingID)
	if err != nil {
		return nil, err
	}
	return scanFeatured(row)
}

func (r *featuredRepo) UpdateEnd(ctx context.Context, tx repository.Tx, id string, endAt time.Time) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE featured_listings SET end_at=$2 WHERE id=$1;`, id, endAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *featuredRepo) ListEndedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.FeaturedListing, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + featuredColumns + ` FROM featured_listings WHERE end_at <= $1 ORDER BY end_at ASC LIMIT $2;`
	return r.list(ctx, tx, q, cutoff, limit)
}

func (r *featuredRepo) ListEndingWithin(ctx context.Context, tx repository.Tx, now time.Time, window time.Duration, limit int) ([]*model.FeaturedListing, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + featuredColumns + ` FROM featured_listings WHERE end_at > $1 AND end_at <= $2 ORDER BY end_at ASC LIMIT $3;`
	return r.list(ctx, tx, q, now, now.Add(window), limit)
}

func (r *featuredRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.FeaturedListing, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.FeaturedListing
	for rows.Next() {
		f, err := scanFeatured(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *featuredRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM featured_listings WHERE id=$1;`, id); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
