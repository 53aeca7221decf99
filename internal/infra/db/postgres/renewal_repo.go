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

var _ repository.RenewalRepository = (*renewalRepo)(nil)

type renewalRepo struct{ pool *pgxpool.Pool }

func NewRenewalRepo(pool *pgxpool.Pool) *renewalRepo {
	return &renewalRepo{pool: pool}
}

const renewalColumns = `id, listing_id, user_id, type, amount_irr, payment_id, old_expires_at, new_expires_at, status, admin_note, processed_by, created_at, processed_at`

func scanRenewal(row pgx.Row) (*model.Renewal, error) {
	r := &model.Renewal{}
	if err := row.Scan(
		&r.ID, &r.ListingID, &r.UserID, &r.Type, &r.AmountIRR, &r.PaymentID,
		&r.OldExpiresAt, &r.NewExpiresAt, &r.Status, &r.AdminNote, &r.ProcessedBy,
		&r.CreatedAt, &r.ProcessedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return r, nil
}

func (r *renewalRepo) Save(ctx context.Context, tx repository.Tx, rn *model.Renewal) error {
	const q = `
INSERT INTO renewals (
  ` + renewalColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  status=$9, admin_note=$10, processed_by=$11, processed_at=$13;`

	if _, err := execSQL(ctx, r.pool, tx, q,
		rn.ID, rn.ListingID, rn.UserID, rn.Type, rn.AmountIRR, rn.PaymentID,
		rn.OldExpiresAt, rn.NewExpiresAt, rn.Status, rn.AdminNote, rn.ProcessedBy,
		rn.CreatedAt, rn.ProcessedAt); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *renewalRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Renewal, error) {
	q := `SELECT ` + renewalColumns + ` FROM renewals WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanRenewal(row)
}

// CloseIfPending mirrors the payments guard: admins and replays race, the
// WHERE clause decides the winner.
func (r *renewalRepo) CloseIfPending(ctx context.Context, tx repository.Tx, id string, status model.RenewalStatus, adminID, note string, processedAt time.Time) (bool, error) {
	const q = `
UPDATE renewals
SET status=$2, processed_by=$3, admin_note=$4, processed_at=$5
WHERE id=$1 AND status='pending';`

	tag, err := execSQL(ctx, r.pool, tx, q, id, status, adminID, note, processedAt)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func (r *renewalRepo) ListPending(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Renewal, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM renewals WHERE status='pending';`)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	const q = `SELECT ` + renewalColumns + ` FROM renewals WHERE status='pending' ORDER BY created_at ASC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, 0, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Renewal
	for rows.Next() {
		rn, err := scanRenewal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rn)
	}
	return out, total, rows.Err()
}
