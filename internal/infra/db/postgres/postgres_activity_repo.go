package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
)

// Postgres unique_violation.
const codeUniqueViolation = "23505"

var _ repository.ActivityRepository = (*activityRepo)(nil)

type activityRepo struct{ pool *pgxpool.Pool }

func NewActivityRepo(pool *pgxpool.Pool) *activityRepo {
	return &activityRepo{pool: pool}
}

func (r *activityRepo) FindByUserAndEvent(ctx context.Context, tx repository.Tx, userID, eventID string) (*model.Activity, error) {
	const q = `SELECT id, event_id, qr_code_id, user_id, quantity, reward_amount, notes, nft_id, tx_hash, created_at FROM activities WHERE user_id=$1 AND event_id=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, eventID)
	if err != nil {
		return nil, err
	}

	a := &model.Activity{}
	if err := row.Scan(&a.ID, &a.EventID, &a.QRCodeID, &a.UserID, &a.Quantity, &a.RewardAmount, &a.Notes, &a.NFTID, &a.TxHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}

func (r *activityRepo) Insert(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	const q = `
INSERT INTO activities (
  id, event_id, qr_code_id, user_id, quantity, reward_amount, notes, nft_id, tx_hash, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
);`

	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.EventID, a.QRCodeID, a.UserID, a.Quantity, a.RewardAmount, a.Notes, a.NFTID, a.TxHash, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyParticipated
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *activityRepo) AttachReward(ctx context.Context, tx repository.Tx, id string, nftID *string, txHash string) error {
	const q = `UPDATE activities SET nft_id=$2, tx_hash=$3 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, nftID, txHash)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
