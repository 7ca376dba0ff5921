// File: internal/usecase/verify_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/geo"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
	"food-rescue-rewards/internal/domain/qr"
	"food-rescue-rewards/internal/infra/logging"
	"food-rescue-rewards/internal/infra/metrics"
)

// Compile-time check
var _ VerificationUseCase = (*verificationUC)(nil)

// Caller is the already-authenticated identity behind a verify request.
type Caller struct {
	UserID string
	Wallet string
}

// VerifyInput is the authenticated scan request.
type VerifyInput struct {
	RawQR       json.RawMessage
	Quantity    float64
	Notes       string
	Geolocation *model.Geolocation
}

// VerifyResult is returned to the scanning user. Reward is nil when the
// scanned role type carries no reward (recipient codes) or dispatch
// failed after the activity was recorded.
type VerifyResult struct {
	Activity *model.Activity    `json:"activity"`
	Reward   *DispatchResult    `json:"reward"`
	Event    model.EventSummary `json:"event"`
}

// AnonymousQRData is the structured payload the anonymous client sends
// after scanning. A client-supplied rewardAmount is ignored: the amount
// is always resolved from the activity-type policy table.
type AnonymousQRData struct {
	EventID      string       `json:"eventId"`
	Type         model.QRType `json:"type"`
	Quantity     float64      `json:"quantity,omitempty"`
	RewardAmount float64      `json:"rewardAmount,omitempty"`
}

// AnonymousInput is the anonymous scan request plus the request
// metadata captured for abuse investigation.
type AnonymousInput struct {
	PseudonymousID     string
	QRData             AnonymousQRData
	Timestamp          time.Time
	Geolocation        *model.Geolocation
	SessionFingerprint string
	IPAddress          string
	UserAgent          string
}

type AnonymousResult struct {
	Activity *model.PseudonymousActivity `json:"activity"`
	Reward   *DispatchResult             `json:"reward"`
	Event    model.EventSummary          `json:"event"`
}

type VerificationUseCase interface {
	Verify(ctx context.Context, caller Caller, in VerifyInput) (*VerifyResult, error)
	VerifyAnonymous(ctx context.Context, in AnonymousInput) (*AnonymousResult, error)
	TraceByPseudonym(ctx context.Context, pseudonymousID string) ([]*model.PseudonymousActivity, error)
	AnonymousStats(ctx context.Context) (*model.AnonymousStats, error)
}

type verificationUC struct {
	events     repository.EventRepository
	qrcodes    repository.QRCodeRepository
	activities repository.ActivityRepository
	pseudo     repository.PseudonymousActivityRepository
	tm         repository.TransactionManager
	dispatch   RewardDispatchUseCase

	nonprofitWallet string
	maxMeters       float64
	log             *zerolog.Logger
}

func NewVerificationUseCase(
	events repository.EventRepository,
	qrcodes repository.QRCodeRepository,
	activities repository.ActivityRepository,
	pseudo repository.PseudonymousActivityRepository,
	tm repository.TransactionManager,
	dispatch RewardDispatchUseCase,
	nonprofitWallet string,
	maxMeters float64,
	logger *zerolog.Logger,
) *verificationUC {
	if maxMeters <= 0 {
		maxMeters = 1000
	}
	return &verificationUC{
		events:          events,
		qrcodes:         qrcodes,
		activities:      activities,
		pseudo:          pseudo,
		tm:              tm,
		dispatch:        dispatch,
		nonprofitWallet: nonprofitWallet,
		maxMeters:       maxMeters,
		log:             logger,
	}
}

// Verify runs the authenticated pipeline: decode, resolve event and QR,
// enforce at-most-once participation, optionally validate proximity,
// record the activity, then dispatch the reward to the caller's own
// wallet. Only volunteer codes trigger a dispatch; recipient codes
// record participation with no reward.
func (u *verificationUC) Verify(ctx context.Context, caller Caller, in VerifyInput) (*VerifyResult, error) {
	defer logging.TraceDuration(u.log, "VerificationUC.Verify")()

	payload, err := qr.Decode(in.RawQR)
	if err != nil {
		metrics.IncScan("authenticated", "invalid_qr")
		return nil, err
	}

	event, qrCode, err := u.resolveRegistry(ctx, payload.EventID, payload.Type)
	if err != nil {
		metrics.IncScan("authenticated", "not_found")
		return nil, err
	}

	if existing, ferr := u.activities.FindByUserAndEvent(ctx, nil, caller.UserID, event.ID); ferr == nil && existing != nil {
		metrics.IncScan("authenticated", "duplicate")
		return nil, &domain.ConflictError{
			EventTitle:   event.Title,
			OccurredAt:   existing.CreatedAt,
			RewardAmount: existing.RewardAmount,
		}
	}

	if err := u.checkProximity(event, in.Geolocation); err != nil {
		metrics.IncScan("authenticated", "too_far")
		return nil, err
	}

	rewardAmount := 0.0
	if qrCode.Type == model.QRTypeVolunteer {
		rewardAmount = model.RewardAmountFor(event.ActivityType)
	}
	activity := &model.Activity{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		QRCodeID:     qrCode.ID,
		UserID:       caller.UserID,
		Quantity:     resolveQuantity(in.Quantity, payload.Quantity, event.DefaultQuantity),
		RewardAmount: rewardAmount,
		Notes:        in.Notes,
		CreatedAt:    time.Now(),
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.qrcodes.IncrementUsedCount(ctx, tx, qrCode.ID); err != nil {
			return err
		}
		return u.activities.Insert(ctx, tx, activity)
	})
	if err != nil {
		// Two simultaneous scans can both pass the existence check; the
		// unique index is the authoritative guard and its violation is
		// the same conflict outcome, not a fatal error.
		if errors.Is(err, domain.ErrAlreadyParticipated) {
			metrics.IncScan("authenticated", "duplicate")
			return nil, u.conflictFor(ctx, caller.UserID, event)
		}
		metrics.IncScan("authenticated", "error")
		return nil, err
	}

	result := &VerifyResult{Activity: activity, Event: event.Summary()}
	if qrCode.Type != model.QRTypeVolunteer {
		metrics.IncScan("authenticated", "ok")
		return result, nil
	}

	reward, err := u.dispatch.Dispatch(ctx, caller.Wallet, event.ActivityType, event.Location, activity.Quantity, activity.ID, qrCode.Type)
	if err != nil {
		// Participation proof and reward payment are decoupled: the
		// activity stays recorded, the reward waits for reconciliation.
		metrics.IncScan("authenticated", "dispatch_failed")
		u.log.Error().Err(err).Str("activity", activity.ID).Msg("reward dispatch failed after activity commit")
		return result, err
	}
	activity.TxHash = &reward.TxHash
	activity.NFTID = reward.NFTID
	if aerr := u.activities.AttachReward(ctx, nil, activity.ID, reward.NFTID, reward.TxHash); aerr != nil {
		u.log.Warn().Err(aerr).Str("activity", activity.ID).Msg("failed to attach reward to activity")
	}
	result.Reward = reward
	metrics.IncScan("authenticated", "ok")
	return result, nil
}

// VerifyAnonymous runs the pseudonymous pipeline. The identity is a
// client-generated UUIDv4 and the reward recipient is always the
// configured nonprofit wallet, regardless of the scanned role type.
func (u *verificationUC) VerifyAnonymous(ctx context.Context, in AnonymousInput) (*AnonymousResult, error) {
	defer logging.TraceDuration(u.log, "VerificationUC.VerifyAnonymous")()

	if !isUUIDv4(in.PseudonymousID) {
		metrics.IncScan("anonymous", "invalid_pseudonym")
		return nil, domain.ErrInvalidPseudonym
	}
	if in.QRData.EventID == "" {
		metrics.IncScan("anonymous", "invalid_qr")
		return nil, domain.ErrInvalidQR
	}

	event, qrCode, err := u.resolveRegistry(ctx, in.QRData.EventID, in.QRData.Type)
	if err != nil {
		metrics.IncScan("anonymous", "not_found")
		return nil, err
	}

	if existing, ferr := u.pseudo.FindByPseudonymAndEvent(ctx, nil, in.PseudonymousID, event.ID); ferr == nil && existing != nil {
		metrics.IncScan("anonymous", "duplicate")
		return nil, &domain.ConflictError{
			EventTitle:   event.Title,
			OccurredAt:   existing.CreatedAt,
			RewardAmount: existing.RewardAmount,
		}
	}

	if err := u.checkProximity(event, in.Geolocation); err != nil {
		metrics.IncScan("anonymous", "too_far")
		return nil, err
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	activity := &model.PseudonymousActivity{
		ID:                 uuid.NewString(),
		PseudonymousID:     in.PseudonymousID,
		EventID:            event.ID,
		QRCodeID:           qrCode.ID,
		ActivityType:       qrCode.Type,
		Quantity:           resolveQuantity(in.QRData.Quantity, 0, event.DefaultQuantity),
		RewardAmount:       model.RewardAmountFor(event.ActivityType),
		Timestamp:          ts,
		Geolocation:        in.Geolocation,
		SessionFingerprint: in.SessionFingerprint,
		IPAddress:          in.IPAddress,
		UserAgent:          in.UserAgent,
		CreatedAt:          time.Now(),
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.qrcodes.IncrementUsedCount(ctx, tx, qrCode.ID); err != nil {
			return err
		}
		return u.pseudo.Insert(ctx, tx, activity)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyParticipated) {
			metrics.IncScan("anonymous", "duplicate")
			return nil, u.pseudoConflictFor(ctx, in.PseudonymousID, event)
		}
		metrics.IncScan("anonymous", "error")
		return nil, err
	}

	result := &AnonymousResult{Activity: activity, Event: event.Summary()}
	reward, err := u.dispatch.Dispatch(ctx, u.nonprofitWallet, event.ActivityType, event.Location, activity.Quantity, activity.ID, qrCode.Type)
	if err != nil {
		metrics.IncScan("anonymous", "dispatch_failed")
		u.log.Error().Err(err).Str("activity", activity.ID).Msg("anonymous reward dispatch failed after activity commit")
		return result, err
	}
	result.Reward = reward
	u.attachProof(ctx, activity, reward)
	metrics.IncScan("anonymous", "ok")
	return result, nil
}

func (u *verificationUC) TraceByPseudonym(ctx context.Context, pseudonymousID string) ([]*model.PseudonymousActivity, error) {
	if !isUUIDv4(pseudonymousID) {
		return nil, domain.ErrInvalidPseudonym
	}
	return u.pseudo.ListByPseudonym(ctx, nil, pseudonymousID)
}

func (u *verificationUC) AnonymousStats(ctx context.Context) (*model.AnonymousStats, error) {
	return u.pseudo.Stats(ctx, nil)
}

// resolveRegistry performs the event and active-QR point lookups.
func (u *verificationUC) resolveRegistry(ctx context.Context, eventID string, typ model.QRType) (*model.Event, *model.QRCode, error) {
	event, err := u.events.FindByID(ctx, nil, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrEventNotFound
		}
		return nil, nil, err
	}
	qrCode, err := u.qrcodes.FindActive(ctx, nil, event.ID, typ)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrQRNotFoundOrExpired
		}
		return nil, nil, err
	}
	return event, qrCode, nil
}

// checkProximity validates the caller's distance from the event. A
// missing geolocation on either side skips the check (treated as pass),
// and an out-of-range fix is treated as missing rather than fed into
// the distance formula.
func (u *verificationUC) checkProximity(event *model.Event, loc *model.Geolocation) error {
	if loc == nil || event.Coordinates == nil {
		return nil
	}
	if !geo.ValidCoordinates(loc.Latitude, loc.Longitude) {
		return nil
	}
	v := geo.ValidateProximity(loc.Latitude, loc.Longitude, event.Coordinates.Latitude, event.Coordinates.Longitude, u.maxMeters)
	if !v.OK {
		return &domain.LocationError{DistanceMeters: v.DistanceMeters, MaxMeters: v.MaxMeters}
	}
	return nil
}

// conflictFor rebuilds the duplicate summary after an insert lost the
// unique-index race to a concurrent scan.
func (u *verificationUC) conflictFor(ctx context.Context, userID string, event *model.Event) error {
	c := &domain.ConflictError{EventTitle: event.Title, OccurredAt: time.Now()}
	if existing, err := u.activities.FindByUserAndEvent(ctx, nil, userID, event.ID); err == nil && existing != nil {
		c.OccurredAt = existing.CreatedAt
		c.RewardAmount = existing.RewardAmount
	}
	return c
}

// pseudoConflictFor is conflictFor's anonymous-path twin: it re-fetches
// the record that won the unique-index race so the duplicate response
// echoes the original participation.
func (u *verificationUC) pseudoConflictFor(ctx context.Context, pseudonymousID string, event *model.Event) error {
	c := &domain.ConflictError{EventTitle: event.Title, OccurredAt: time.Now()}
	if existing, err := u.pseudo.FindByPseudonymAndEvent(ctx, nil, pseudonymousID, event.ID); err == nil && existing != nil {
		c.OccurredAt = existing.CreatedAt
		c.RewardAmount = existing.RewardAmount
	}
	return c
}

// attachProof stamps the chain outcome on the pseudonymous record.
// Best-effort: the receipt already confirmed, a write failure here is
// logged and the request still succeeds.
func (u *verificationUC) attachProof(ctx context.Context, a *model.PseudonymousActivity, r *DispatchResult) {
	proof := model.ChainProof{TxHash: r.TxHash, BlockNumber: r.BlockNumber, Status: "confirmed"}
	if err := u.pseudo.AttachProof(ctx, nil, a.ID, proof); err != nil {
		u.log.Warn().Err(err).Str("activity", a.ID).Msg("failed to attach chain proof")
		return
	}
	a.Proof = &proof
	a.RewardsDistributed = true
}

func resolveQuantity(provided, fromPayload, eventDefault float64) float64 {
	switch {
	case provided > 0:
		return provided
	case fromPayload > 0:
		return fromPayload
	case eventDefault > 0:
		return eventDefault
	default:
		return 1
	}
}

func isUUIDv4(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 4
}
