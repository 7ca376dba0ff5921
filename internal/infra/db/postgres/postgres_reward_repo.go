package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
)

var _ repository.RewardRepository = (*rewardRepo)(nil)

type rewardRepo struct{ pool *pgxpool.Pool }

func NewRewardRepo(pool *pgxpool.Pool) *rewardRepo {
	return &rewardRepo{pool: pool}
}

func (r *rewardRepo) Append(ctx context.Context, tx repository.Tx, rw *model.Reward) error {
	const q = `
INSERT INTO rewards (
  id, activity_ref, recipient, amount, tx_hash, nft_id, from_pool, status, type, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
);`

	_, err := execSQL(ctx, r.pool, tx, q, rw.ID, rw.ActivityRef, rw.Recipient, rw.Amount, rw.TxHash, rw.NFTID, rw.FromPool, rw.Status, rw.Type, rw.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *rewardRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, txHash string, nftID *string, fromPool bool) error {
	const q = `UPDATE rewards SET status='completed', tx_hash=$2, nft_id=$3, from_pool=$4 WHERE id=$1 AND status='pending';`
	_, err := execSQL(ctx, r.pool, tx, q, id, txHash, nftID, fromPool)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *rewardRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE rewards SET status='failed' WHERE id=$1 AND status='pending';`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
