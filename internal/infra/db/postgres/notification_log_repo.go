package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, subjectID, userID, kind string) error {
	// The UNIQUE constraint on (subject_id, kind) handles duplicate
	// prevention; ON CONFLICT keeps a replay from erroring out.
	const q = `
INSERT INTO notification_log (id, subject_id, user_id, kind)
VALUES ($1, $2, $3, $4)
ON CONFLICT (subject_id, kind) DO NOTHING;`

	if _, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), subjectID, userID, kind); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationLogRepo) Exists(ctx context.Context, tx repository.Tx, subjectID, kind string) (bool, error) {
	const q = `
SELECT EXISTS(
    SELECT 1 FROM notification_log
    WHERE subject_id = $1 AND kind = $2
);`
	row, err := pickRow(ctx, r.pool, tx, q, subjectID, kind)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
