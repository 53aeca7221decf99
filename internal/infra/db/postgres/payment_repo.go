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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, listing_id, plan_id, method, gateway, amount_irr, discount_code, discount_amount_irr, authority, ref_id, receipt_ref, status, reject_reason, created_at, updated_at, verified_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(
		&p.ID, &p.UserID, &p.ListingID, &p.PlanID, &p.Method, &p.Gateway, &p.AmountIRR,
		&p.DiscountCode, &p.DiscountAmountIRR, &p.Authority, &p.RefID, &p.ReceiptRef,
		&p.Status, &p.RejectReason, &p.CreatedAt, &p.UpdatedAt, &p.VerifiedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  ` + paymentColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) ON CONFLICT (id) DO UPDATE SET
  method=$5, gateway=$6, amount_irr=$7, discount_code=$8, discount_amount_irr=$9,
  authority=$10, ref_id=$11, receipt_ref=$12, status=$13, reject_reason=$14, updated_at=$16, verified_at=$17;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.ListingID, p.PlanID, p.Method, p.Gateway, p.AmountIRR,
		p.DiscountCode, p.DiscountAmountIRR, p.Authority, p.RefID, p.ReceiptRef,
		p.Status, p.RejectReason, p.CreatedAt, p.UpdatedAt, p.VerifiedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByAuthority(ctx context.Context, tx repository.Tx, authority string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE authority=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+" LIMIT 1;", authority)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// UpdateStatusIfPending is the guarded transition: the WHERE clause makes the
// write a compare-and-set, which is what keeps callbacks, admins and sweeps
// from trampling each other.
func (r *paymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, verifiedAt *time.Time, reason string) (bool, error) {
	const q = `
UPDATE payments
SET status=$2, ref_id=COALESCE($3, ref_id), verified_at=COALESCE($4, verified_at), reject_reason=$5, updated_at=NOW()
WHERE id=$1 AND status='pending';`

	tag, err := execSQL(ctx, r.pool, tx, q, id, status, refID, verifiedAt, reason)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentRepo) SetAuthority(ctx context.Context, tx repository.Tx, id, authority string) error {
	const q = `UPDATE payments SET authority=$2, updated_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id, authority); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) SetReceipt(ctx context.Context, tx repository.Tx, id, receiptRef string) error {
	const q = `UPDATE payments SET receipt_ref=$2, updated_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id, receiptRef); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, method model.PaymentMethod, cutoff time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND method=$1 AND created_at < $2 ORDER BY created_at ASC LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, method, cutoff, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paymentRepo) ListPending(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Payment, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM payments WHERE status='pending';`)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, 0, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *paymentRepo) ExistsByPlan(ctx context.Context, tx repository.Tx, planID string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS(SELECT 1 FROM payments WHERE plan_id=$1);`, planID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *paymentRepo) SumCompletedSince(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COALESCE(SUM(amount_irr),0) FROM payments WHERE status='completed' AND verified_at >= $1;`, since)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
