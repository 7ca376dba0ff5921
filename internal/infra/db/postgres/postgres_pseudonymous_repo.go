package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
)

var _ repository.PseudonymousActivityRepository = (*pseudonymousRepo)(nil)

type pseudonymousRepo struct{ pool *pgxpool.Pool }

func NewPseudonymousRepo(pool *pgxpool.Pool) *pseudonymousRepo {
	return &pseudonymousRepo{pool: pool}
}

const pseudonymousColumns = `id, pseudonymous_id, event_id, qr_code_id, activity_type, quantity, reward_amount, ts, latitude, longitude, accuracy, session_fingerprint, ip_address, user_agent, proof_tx_hash, proof_block_number, proof_status, rewards_distributed, created_at`

func (r *pseudonymousRepo) FindByPseudonymAndEvent(ctx context.Context, tx repository.Tx, pseudonymousID, eventID string) (*model.PseudonymousActivity, error) {
	q := `SELECT ` + pseudonymousColumns + ` FROM pseudonymous_activities WHERE pseudonymous_id=$1 AND event_id=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, pseudonymousID, eventID)
	if err != nil {
		return nil, err
	}
	return scanPseudonymous(row)
}

func (r *pseudonymousRepo) Insert(ctx context.Context, tx repository.Tx, a *model.PseudonymousActivity) error {
	const q = `
INSERT INTO pseudonymous_activities (
  id, pseudonymous_id, event_id, qr_code_id, activity_type, quantity, reward_amount, ts, latitude, longitude, accuracy, session_fingerprint, ip_address, user_agent, rewards_distributed, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
);`

	var lat, lng, acc *float64
	if a.Geolocation != nil {
		lat, lng, acc = &a.Geolocation.Latitude, &a.Geolocation.Longitude, &a.Geolocation.Accuracy
	}
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.PseudonymousID, a.EventID, a.QRCodeID, a.ActivityType, a.Quantity, a.RewardAmount, a.Timestamp, lat, lng, acc, a.SessionFingerprint, a.IPAddress, a.UserAgent, a.RewardsDistributed, a.CreatedAt)
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

func (r *pseudonymousRepo) AttachProof(ctx context.Context, tx repository.Tx, id string, proof model.ChainProof) error {
	const q = `UPDATE pseudonymous_activities SET proof_tx_hash=$2, proof_block_number=$3, proof_status=$4, rewards_distributed=TRUE WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, proof.TxHash, proof.BlockNumber, proof.Status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *pseudonymousRepo) ListByPseudonym(ctx context.Context, tx repository.Tx, pseudonymousID string) ([]*model.PseudonymousActivity, error) {
	q := `SELECT ` + pseudonymousColumns + ` FROM pseudonymous_activities WHERE pseudonymous_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, pseudonymousID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPseudonymous(rows)
}

func (r *pseudonymousRepo) ListUnrewardedOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PseudonymousActivity, error) {
	q := `SELECT ` + pseudonymousColumns + ` FROM pseudonymous_activities WHERE rewards_distributed=FALSE AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPseudonymous(rows)
}

func (r *pseudonymousRepo) Stats(ctx context.Context, tx repository.Tx) (*model.AnonymousStats, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(reward_amount) FILTER (WHERE rewards_distributed), 0), COUNT(DISTINCT pseudonymous_id) FROM pseudonymous_activities;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}

	s := &model.AnonymousStats{}
	if err := row.Scan(&s.TotalActivities, &s.TotalRewardsDistributed, &s.UniqueParticipants); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func scanPseudonymous(row pgx.Row) (*model.PseudonymousActivity, error) {
	a := &model.PseudonymousActivity{}
	var lat, lng, acc *float64
	var proofTx, proofStatus *string
	var proofBlock *int64
	if err := row.Scan(&a.ID, &a.PseudonymousID, &a.EventID, &a.QRCodeID, &a.ActivityType, &a.Quantity, &a.RewardAmount, &a.Timestamp, &lat, &lng, &acc, &a.SessionFingerprint, &a.IPAddress, &a.UserAgent, &proofTx, &proofBlock, &proofStatus, &a.RewardsDistributed, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if lat != nil && lng != nil {
		g := &model.Geolocation{Latitude: *lat, Longitude: *lng}
		if acc != nil {
			g.Accuracy = *acc
		}
		a.Geolocation = g
	}
	if proofTx != nil {
		p := &model.ChainProof{TxHash: *proofTx}
		if proofBlock != nil {
			p.BlockNumber = uint64(*proofBlock)
		}
		if proofStatus != nil {
			p.Status = *proofStatus
		}
		a.Proof = p
	}
	return a, nil
}

func collectPseudonymous(rows pgx.Rows) ([]*model.PseudonymousActivity, error) {
	var out []*model.PseudonymousActivity
	for rows.Next() {
		a, err := scanPseudonymous(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
