// File: internal/usecase/dispatch_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/adapter"
	"food-rescue-rewards/internal/domain/ports/repository"
	"food-rescue-rewards/internal/infra/metrics"
)

// Compile-time check
var _ RewardDispatchUseCase = (*rewardDispatchUC)(nil)

// DispatchResult reports which path succeeded and what landed on chain.
type DispatchResult struct {
	RewardAmount float64 `json:"rewardAmount"`
	TxHash       string  `json:"txHash"`
	NFTID        *string `json:"nftId"`
	BlockNumber  uint64  `json:"blockNumber"`
	FromPool     bool    `json:"fromPool"`
}

type RewardDispatchUseCase interface {
	// Dispatch resolves the reward amount from the activity-type policy,
	// attempts the mint-to-pool path, and falls back to a direct token
	// transfer on any primary-path failure. The primary path is always
	// attempted first regardless of recipient type; fallback exists
	// purely as failure recovery.
	Dispatch(ctx context.Context, recipient string, activityType model.ActivityType, location string, quantity float64, activityRef string, rewardType model.QRType) (*DispatchResult, error)
}

type rewardDispatchUC struct {
	rewards repository.RewardRepository
	gateway adapter.ChainGateway
	log     *zerolog.Logger
}

func NewRewardDispatchUseCase(rewards repository.RewardRepository, gateway adapter.ChainGateway, logger *zerolog.Logger) *rewardDispatchUC {
	return &rewardDispatchUC{rewards: rewards, gateway: gateway, log: logger}
}

func (u *rewardDispatchUC) Dispatch(ctx context.Context, recipient string, activityType model.ActivityType, location string, quantity float64, activityRef string, rewardType model.QRType) (*DispatchResult, error) {
	if recipient == "" {
		return nil, &domain.DispatchError{Primary: domain.ErrInvalidArgument, Fallback: domain.ErrInvalidArgument}
	}

	amount := model.RewardAmountFor(activityType)

	entry := &model.Reward{
		ID:          ulid.Make().String(),
		ActivityRef: activityRef,
		Recipient:   recipient,
		Amount:      amount,
		Status:      model.RewardStatusPending,
		Type:        rewardType,
		CreatedAt:   time.Now(),
	}
	if err := u.rewards.Append(ctx, nil, entry); err != nil {
		u.log.Warn().Err(err).Str("activity", activityRef).Msg("reward ledger append failed")
	}

	// Primary path: mint-to-pool.
	start := time.Now()
	res, mintErr := u.gateway.MintToPool(ctx, adapter.MintRequest{
		Recipient:   recipient,
		Subtype:     model.NFTSubtypeFor(activityType),
		Timestamp:   time.Now(),
		Location:    location,
		Quantity:    quantity,
		ActivityRef: activityRef,
	})
	metrics.ObserveChainCall("mint", time.Since(start), mintErr == nil)
	if mintErr == nil {
		entry.FromPool = true
		u.complete(ctx, entry, res)
		metrics.IncDispatch("pool")
		return &DispatchResult{
			RewardAmount: amount,
			TxHash:       res.TxHash,
			NFTID:        res.TokenID,
			BlockNumber:  res.BlockNumber,
			FromPool:     true,
		}, nil
	}

	u.log.Warn().Err(mintErr).
		Str("recipient", recipient).
		Str("activity", activityRef).
		Msg("mint-to-pool failed, falling back to direct transfer")

	// Fallback path: plain token transfer of the same amount.
	start = time.Now()
	res, transferErr := u.gateway.Transfer(ctx, recipient, amount)
	metrics.ObserveChainCall("transfer", time.Since(start), transferErr == nil)
	if transferErr == nil {
		u.complete(ctx, entry, res)
		metrics.IncDispatch("transfer")
		return &DispatchResult{
			RewardAmount: amount,
			TxHash:       res.TxHash,
			BlockNumber:  res.BlockNumber,
			FromPool:     false,
		}, nil
	}

	if err := u.rewards.MarkFailed(ctx, nil, entry.ID); err != nil {
		u.log.Warn().Err(err).Str("reward", entry.ID).Msg("failed to mark reward entry failed")
	}
	metrics.IncDispatch("failed")
	return nil, &domain.DispatchError{Primary: mintErr, Fallback: transferErr}
}

// complete marks the ledger entry confirmed, persisting which path paid
// and the minted token id. The receipt already landed; a ledger write
// failure here is logged, not surfaced.
func (u *rewardDispatchUC) complete(ctx context.Context, entry *model.Reward, res *adapter.TxResult) {
	entry.TxHash = res.TxHash
	entry.NFTID = res.TokenID
	entry.Status = model.RewardStatusCompleted
	metrics.AddRewardAmount(entry.Amount)
	if err := u.rewards.MarkCompleted(ctx, nil, entry.ID, res.TxHash, res.TokenID, entry.FromPool); err != nil {
		u.log.Warn().Err(err).Str("reward", entry.ID).Msg("failed to mark reward entry completed")
	}
}
