//go:build !integration

package model_test

import (
	"testing"
	"time"

	"food-rescue-rewards/internal/domain/model"
)

func TestRewardAmountFor(t *testing.T) {
	cases := []struct {
		at   model.ActivityType
		want float64
	}{
		{model.ActivityTypeSorting, 1},
		{model.ActivityTypeDistribution, 2},
		{model.ActivityTypePickup, 1.5},
		{model.ActivityType("unknown"), 1},
	}
	for _, tc := range cases {
		if got := model.RewardAmountFor(tc.at); got != tc.want {
			t.Errorf("RewardAmountFor(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestNFTSubtypeFor(t *testing.T) {
	cases := []struct {
		at   model.ActivityType
		want uint8
	}{
		{model.ActivityTypeSorting, 1},
		{model.ActivityTypeDistribution, 2},
		{model.ActivityTypePickup, 3},
		{model.ActivityType(""), 1},
	}
	for _, tc := range cases {
		if got := model.NFTSubtypeFor(tc.at); got != tc.want {
			t.Errorf("NFTSubtypeFor(%s) = %d, want %d", tc.at, got, tc.want)
		}
	}
}

func TestQRCodeUsable(t *testing.T) {
	now := time.Now()

	t.Run("active and unexpired", func(t *testing.T) {
		q := &model.QRCode{IsActive: true, ExpiresAt: now.Add(time.Hour)}
		if !q.Usable(now) {
			t.Error("expected usable")
		}
	})

	t.Run("expired is never usable even when active", func(t *testing.T) {
		q := &model.QRCode{IsActive: true, ExpiresAt: now.Add(-time.Minute)}
		if q.Usable(now) {
			t.Error("expected expired code to be unusable")
		}
	})

	t.Run("inactive", func(t *testing.T) {
		q := &model.QRCode{IsActive: false, ExpiresAt: now.Add(time.Hour)}
		if q.Usable(now) {
			t.Error("expected inactive code to be unusable")
		}
	})
}
