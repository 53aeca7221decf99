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

var _ repository.ListingRepository = (*listingRepo)(nil)

// listingRepo touches only the columns the engine owns. The listings table
// itself belongs to the marketplace service.
type listingRepo struct{ pool *pgxpool.Pool }

func NewListingRepo(pool *pgxpool.Pool) *listingRepo {
	return &listingRepo{pool: pool}
}

const listingColumns = `id, owner_id, title, status, expires_at, renewal_count`

func scanListing(row pgx.Row) (*model.Listing, error) {
	l := &model.Listing{}
	if err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Status, &l.ExpiresAt, &l.RenewalCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return l, nil
}

func (r *listingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanListing(row)
}

func (r *listingRepo) ApplyRenewal(ctx context.Context, tx repository.Tx, id string, newExpiresAt time.Time) error {
	const q = `
UPDATE listings
SET status='active', expires_at=$2, renewal_count=renewal_count+1
WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, newExpiresAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *listingRepo) ExpireIfActive(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE listings SET status='expired' WHERE id=$1 AND status='active';`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func (r *listingRepo) ListActiveExpiredBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + listingColumns + ` FROM listings WHERE status='active' AND expires_at <= $1 ORDER BY expires_at ASC LIMIT $2;`
	return r.list(ctx, tx, q, cutoff, limit)
}

func (r *listingRepo) ListActiveExpiringWithin(ctx context.Context, tx repository.Tx, now time.Time, window time.Duration, limit int) ([]*model.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + listingColumns + ` FROM listings WHERE status='active' AND expires_at > $1 AND expires_at <= $2 ORDER BY expires_at ASC LIMIT $3;`
	return r.list(ctx, tx, q, now, now.Add(window), limit)
}

func (r *listingRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Listing, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
