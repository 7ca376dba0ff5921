package repository

import (
	"context"
	"time"

	"food-rescue-rewards/internal/domain/model"
)

// ActivityRepository persists authenticated participation records.
// Insert must surface a unique-constraint violation on
// (eventId, userId) as ErrAlreadyParticipated; the index is the
// authoritative duplicate guard, the pre-insert existence check is
// only a fast path.
type ActivityRepository interface {
	FindByUserAndEvent(ctx context.Context, tx Tx, userID, eventID string) (*model.Activity, error)
	Insert(ctx context.Context, tx Tx, a *model.Activity) error
	// AttachReward records the dispatch outcome on the activity row.
	// Best-effort: a failure here never fails the scan request.
	AttachReward(ctx context.Context, tx Tx, id string, nftID *string, txHash string) error
}

// PseudonymousActivityRepository is the anonymous-path twin, keyed by
// (eventId, pseudonymousId) with the same uniqueness contract.
type PseudonymousActivityRepository interface {
	FindByPseudonymAndEvent(ctx context.Context, tx Tx, pseudonymousID, eventID string) (*model.PseudonymousActivity, error)
	Insert(ctx context.Context, tx Tx, a *model.PseudonymousActivity) error
	AttachProof(ctx context.Context, tx Tx, id string, proof model.ChainProof) error
	ListByPseudonym(ctx context.Context, tx Tx, pseudonymousID string) ([]*model.PseudonymousActivity, error)
	// ListUnrewardedOlderThan feeds the reward reconciler.
	ListUnrewardedOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PseudonymousActivity, error)
	Stats(ctx context.Context, tx Tx) (*model.AnonymousStats, error)
}
