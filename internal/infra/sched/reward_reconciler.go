package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/config"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
	"food-rescue-rewards/internal/usecase"
)

// RewardReconciler periodically scans the pseudonymous ledger for recorded
// activities whose reward dispatch never completed and retries them. This
// covers cases where the chain call failed after the activity committed or
// the process crashed mid-dispatch.
type RewardReconciler struct {
	dispatch        usecase.RewardDispatchUseCase
	pseudo          repository.PseudonymousActivityRepository
	events          repository.EventRepository
	nonprofitWallet string
	interval        time.Duration
	minAge          time.Duration // how old an unrewarded activity must be to retry
	batchLimit      int
	log             *zerolog.Logger
}

func NewRewardReconciler(cfg config.ReconcilerConfig, dispatch usecase.RewardDispatchUseCase, pseudo repository.PseudonymousActivityRepository, events repository.EventRepository, nonprofitWallet string, logger *zerolog.Logger) *RewardReconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.MinAge <= 0 {
		cfg.MinAge = 5 * time.Minute
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 50
	}
	recLog := logger.With().Str("component", "RewardReconciler").Logger()
	return &RewardReconciler{
		dispatch:        dispatch,
		pseudo:          pseudo,
		events:          events,
		nonprofitWallet: nonprofitWallet,
		interval:        cfg.Interval,
		minAge:          cfg.MinAge,
		batchLimit:      cfg.BatchLimit,
		log:             &recLog,
	}
}

func (w *RewardReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting reward reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reward reconciler")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RewardReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.minAge)
	stale, err := w.pseudo.ListUnrewardedOlderThan(ctx, nil, cutoff, w.batchLimit)
	if err != nil {
		w.log.Error().Err(err).Msg("list unrewarded activities failed")
		return
	}
	if len(stale) == 0 {
		return
	}

	reconciled := 0
	for _, a := range stale {
		if err := w.reconcile(ctx, a); err != nil {
			w.log.Warn().Err(err).Str("activity", a.ID).Msg("reward retry failed")
			continue
		}
		reconciled++
	}
	if reconciled > 0 {
		w.log.Info().Int("count", reconciled).Int("scanned", len(stale)).Msg("stale rewards reconciled")
	}
}

func (w *RewardReconciler) reconcile(ctx context.Context, a *model.PseudonymousActivity) error {
	event, err := w.events.FindByID(ctx, nil, a.EventID)
	if err != nil {
		return err
	}

	res, err := w.dispatch.Dispatch(ctx, w.nonprofitWallet, event.ActivityType, event.Location, a.Quantity, a.ID, a.ActivityType)
	if err != nil {
		return err
	}

	proof := model.ChainProof{TxHash: res.TxHash, BlockNumber: res.BlockNumber, Status: "confirmed"}
	if err := w.pseudo.AttachProof(ctx, nil, a.ID, proof); err != nil {
		// The reward moved on chain; the next pass must not re-pay it.
		w.log.Error().Err(err).Str("activity", a.ID).Str("tx", res.TxHash).Msg("proof attach failed after successful dispatch")
		return err
	}
	return nil
}
