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

var _ repository.FeaturedPlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planColumns = `id, name, duration_days, price_irr, discount_percent, features, active, sort_order, created_at, updated_at`

// Features live in a jsonb column and are parsed here, once, at the
// repository boundary.
func scanPlan(row pgx.Row) (*model.FeaturedPlan, error) {
	p := &model.FeaturedPlan{}
	var features []byte
	if err := row.Scan(
		&p.ID, &p.Name, &p.DurationDays, &p.PriceIRR, &p.DiscountPercent,
		&features, &p.Active, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return p, nil
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, plan *model.FeaturedPlan) error {
	features, err := json.Marshal(plan.Features)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO featured_plans (
  ` + planColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  name=$2, duration_days=$3, price_irr=$4, discount_percent=$5, features=$6, active=$7, sort_order=$8, updated_at=NOW();`

	if _, err := execSQL(ctx, r.pool, tx, q,
		plan.ID, plan.Name, plan.DurationDays, plan.PriceIRR, plan.DiscountPercent,
		features, plan.Active, plan.SortOrder, plan.CreatedAt, plan.UpdatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.FeaturedPlan, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+planColumns+` FROM featured_plans WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.FeaturedPlan, error) {
	return r.list(ctx, tx, `SELECT `+planColumns+` FROM featured_plans WHERE active ORDER BY sort_order, name;`)
}

func (r *planRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.FeaturedPlan, error) {
	return r.list(ctx, tx, `SELECT `+planColumns+` FROM featured_plans ORDER BY sort_order, name;`)
}

func (r *planRepo) list(ctx context.Context, tx repository.Tx, q string) ([]*model.FeaturedPlan, error) {
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.FeaturedPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *planRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM featured_plans WHERE id=$1;`, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
