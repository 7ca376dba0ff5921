//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
)

func readRewardRow(t *testing.T, ctx context.Context, id string) *model.Reward {
	t.Helper()
	row := testPool.QueryRow(ctx,
		`SELECT id, activity_ref, recipient, amount, tx_hash, nft_id, from_pool, status, type, created_at
		 FROM rewards WHERE id = $1`, id)
	var rw model.Reward
	if err := row.Scan(&rw.ID, &rw.ActivityRef, &rw.Recipient, &rw.Amount, &rw.TxHash, &rw.NFTID, &rw.FromPool, &rw.Status, &rw.Type, &rw.CreatedAt); err != nil {
		t.Fatalf("Failed to read reward row: %v", err)
	}
	return &rw
}

func TestRewardRepo_Integration(t *testing.T) {
	ctx := context.Background()
	rewards := NewRewardRepo(testPool)

	t.Run("MarkCompleted persists tx hash, token id and path", func(t *testing.T) {
		cleanup(t)
		entry := &model.Reward{
			ID:          "rw-1",
			ActivityRef: "act-1",
			Recipient:   "0xWallet",
			Amount:      2,
			Status:      model.RewardStatusPending,
			Type:        model.QRTypeVolunteer,
			CreatedAt:   time.Now(),
		}
		if err := rewards.Append(ctx, repository.NoTX, entry); err != nil {
			t.Fatalf("Failed to append reward: %v", err)
		}

		tokenID := "42"
		if err := rewards.MarkCompleted(ctx, repository.NoTX, entry.ID, "0xmint", &tokenID, true); err != nil {
			t.Fatalf("Failed to mark reward completed: %v", err)
		}

		got := readRewardRow(t, ctx, entry.ID)
		if got.Status != model.RewardStatusCompleted || got.TxHash != "0xmint" {
			t.Errorf("expected completed entry with tx hash, got %+v", got)
		}
		if !got.FromPool {
			t.Error("expected from_pool=true persisted for a pool mint")
		}
		if got.NFTID == nil || *got.NFTID != tokenID {
			t.Errorf("expected nft_id %q persisted, got %v", tokenID, got.NFTID)
		}
	})

	t.Run("MarkCompleted records a fallback transfer without a token id", func(t *testing.T) {
		cleanup(t)
		entry := &model.Reward{
			ID:          "rw-2",
			ActivityRef: "act-2",
			Recipient:   "0xWallet",
			Amount:      1.5,
			Status:      model.RewardStatusPending,
			Type:        model.QRTypeVolunteer,
			CreatedAt:   time.Now(),
		}
		if err := rewards.Append(ctx, repository.NoTX, entry); err != nil {
			t.Fatalf("Failed to append reward: %v", err)
		}
		if err := rewards.MarkCompleted(ctx, repository.NoTX, entry.ID, "0xtransfer", nil, false); err != nil {
			t.Fatalf("Failed to mark reward completed: %v", err)
		}

		got := readRewardRow(t, ctx, entry.ID)
		if got.FromPool || got.NFTID != nil {
			t.Errorf("expected from_pool=false and no nft_id for a transfer, got %+v", got)
		}
	})

	t.Run("MarkFailed leaves completed entries untouched", func(t *testing.T) {
		cleanup(t)
		entry := &model.Reward{
			ID:          "rw-3",
			ActivityRef: "act-3",
			Recipient:   "0xWallet",
			Amount:      1,
			Status:      model.RewardStatusPending,
			Type:        model.QRTypeVolunteer,
			CreatedAt:   time.Now(),
		}
		if err := rewards.Append(ctx, repository.NoTX, entry); err != nil {
			t.Fatalf("Failed to append reward: %v", err)
		}
		if err := rewards.MarkCompleted(ctx, repository.NoTX, entry.ID, "0xmint", nil, true); err != nil {
			t.Fatalf("Failed to mark reward completed: %v", err)
		}
		if err := rewards.MarkFailed(ctx, repository.NoTX, entry.ID); err != nil {
			t.Fatalf("MarkFailed returned an error: %v", err)
		}

		got := readRewardRow(t, ctx, entry.ID)
		if got.Status != model.RewardStatusCompleted {
			t.Errorf("completed entry must never be demoted, got status %s", got.Status)
		}
	})
}
