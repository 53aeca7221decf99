package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
)

var (
	_ repository.DiscountCodeRepository  = (*discountCodeRepo)(nil)
	_ repository.DiscountUsageRepository = (*discountUsageRepo)(nil)
)

type discountCodeRepo struct{ pool *pgxpool.Pool }

func NewDiscountCodeRepo(pool *pgxpool.Pool) *discountCodeRepo {
	return &discountCodeRepo{pool: pool}
}

const discountColumns = `id, code, type, value, max_discount, min_amount_irr, max_uses, max_per_user, plan_ids, expires_at, active, used_count, created_at`

// The applicable-plan allow-list is a jsonb column, parsed once here.
func scanDiscount(row pgx.Row) (*model.DiscountCode, error) {
	d := &model.DiscountCode{}
	var planIDs []byte
	if err := row.Scan(
		&d.ID, &d.Code, &d.Type, &d.Value, &d.MaxDiscount, &d.MinAmountIRR,
		&d.MaxUses, &d.MaxPerUser, &planIDs, &d.ExpiresAt, &d.Active, &d.UsedCount, &d.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(planIDs) > 0 {
		if err := json.Unmarshal(planIDs, &d.PlanIDs); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return d, nil
}

func (r *discountCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.DiscountCode) error {
	planIDs, err := json.Marshal(code.PlanIDs)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO discount_codes (
  ` + discountColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  type=$3, value=$4, max_discount=$5, min_amount_irr=$6, max_uses=$7, max_per_user=$8, plan_ids=$9, expires_at=$10, active=$11;`

	if _, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.Type, code.Value, code.MaxDiscount, code.MinAmountIRR,
		code.MaxUses, code.MaxPerUser, planIDs, code.ExpiresAt, code.Active, code.UsedCount, code.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *discountCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, normalized string) (*model.DiscountCode, error) {
	q := `SELECT ` + discountColumns + ` FROM discount_codes WHERE code=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+" LIMIT 1;", normalized)
	if err != nil {
		return nil, err
	}
	return scanDiscount(row)
}

func (r *discountCodeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.DiscountCode, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+discountColumns+` FROM discount_codes ORDER BY created_at DESC;`)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.DiscountCode
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// IncrementUsedIfBelowCap is the completion-time cap guard: the WHERE clause
// refuses the bump when a concurrent completion already took the last slot.
func (r *discountCodeRepo) IncrementUsedIfBelowCap(ctx context.Context, tx repository.Tx, codeID string) (bool, error) {
	const q = `
UPDATE discount_codes
SET used_count = used_count + 1
WHERE id=$1 AND (max_uses = 0 OR used_count < max_uses);`

	tag, err := execSQL(ctx, r.pool, tx, q, codeID)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

type discountUsageRepo struct{ pool *pgxpool.Pool }

func NewDiscountUsageRepo(pool *pgxpool.Pool) *discountUsageRepo {
	return &discountUsageRepo{pool: pool}
}

func (r *discountUsageRepo) Save(ctx context.Context, tx repository.Tx, usage *model.DiscountUsage) error {
	const q = `
INSERT INTO discount_usages (id, code_id, user_id, payment_id, amount_irr, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	if _, err := execSQL(ctx, r.pool, tx, q,
		usage.ID, usage.CodeID, usage.UserID, usage.PaymentID, usage.AmountIRR, usage.CreatedAt); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *discountUsageRepo) CountByCodeAndUser(ctx context.Context, tx repository.Tx, codeID, userID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM discount_usages WHERE code_id=$1 AND user_id=$2;`, codeID, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *discountUsageRepo) ExistsByPayment(ctx context.Context, tx repository.Tx, paymentID string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS(SELECT 1 FROM discount_usages WHERE payment_id=$1);`, paymentID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
