package model

import "time"

type RewardStatus string

const (
	RewardStatusPending   RewardStatus = "pending"   // submitted, awaiting receipt
	RewardStatusCompleted RewardStatus = "completed" // receipt confirmed on chain
	RewardStatusFailed    RewardStatus = "failed"    // both dispatch paths failed
)

// Reward is an append-only ledger entry for a dispatch attempt. Never
// mutated once status = completed.
type Reward struct {
	ID          string       `json:"id"` // ULID, time-ordered
	ActivityRef string       `json:"activityRef"`
	Recipient   string       `json:"recipient"`
	Amount      float64      `json:"amount"`
	TxHash      string       `json:"txHash,omitempty"`
	NFTID       *string      `json:"nftId"`
	FromPool    bool         `json:"fromPool"`
	Status      RewardStatus `json:"status"`
	Type        QRType       `json:"type"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// RewardAmountFor is the single copy of the activity-type reward table.
// Both the orchestrator (to stamp the activity) and the dispatcher (to
// size the transfer) resolve through here so the two can never drift.
func RewardAmountFor(t ActivityType) float64 {
	switch t {
	case ActivityTypeSorting:
		return 1
	case ActivityTypeDistribution:
		return 2
	case ActivityTypePickup:
		return 1.5
	default:
		return 1
	}
}

// NFTSubtypeFor maps an activity type to the event subtype embedded in
// the minted NFT payload.
func NFTSubtypeFor(t ActivityType) uint8 {
	switch t {
	case ActivityTypeSorting:
		return 1
	case ActivityTypeDistribution:
		return 2
	case ActivityTypePickup:
		return 3
	default:
		return 1
	}
}
