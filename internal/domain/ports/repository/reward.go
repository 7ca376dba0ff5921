package repository

import (
	"context"

	"food-rescue-rewards/internal/domain/model"
)

// RewardRepository is an append-only ledger. Entries are written as
// pending when a dispatch attempt is submitted and marked completed
// only after the chain receipt confirms; completed entries are never
// mutated again.
type RewardRepository interface {
	Append(ctx context.Context, tx Tx, r *model.Reward) error
	// MarkCompleted records the confirmed outcome: which path paid
	// (fromPool) and the minted token id, when the pool path minted one.
	MarkCompleted(ctx context.Context, tx Tx, id, txHash string, nftID *string, fromPool bool) error
	MarkFailed(ctx context.Context, tx Tx, id string) error
}
