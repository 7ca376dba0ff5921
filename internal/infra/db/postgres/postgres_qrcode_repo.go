package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/repository"
)

var _ repository.QRCodeRepository = (*qrCodeRepo)(nil)

type qrCodeRepo struct{ pool *pgxpool.Pool }

func NewQRCodeRepo(pool *pgxpool.Pool) *qrCodeRepo {
	return &qrCodeRepo{pool: pool}
}

func (r *qrCodeRepo) FindActive(ctx context.Context, tx repository.Tx, eventID string, typ model.QRType) (*model.QRCode, error) {
	const q = `SELECT id, event_id, type, expires_at, is_active, used_count, created_by, created_at FROM qr_codes WHERE event_id=$1 AND type=$2 AND is_active=TRUE AND expires_at > NOW() ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, eventID, typ)
	if err != nil {
		return nil, err
	}

	c := &model.QRCode{}
	if err := row.Scan(&c.ID, &c.EventID, &c.Type, &c.ExpiresAt, &c.IsActive, &c.UsedCount, &c.CreatedBy, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

// IncrementUsedCount bumps the counter in SQL so concurrent scans can
// never lose an increment.
func (r *qrCodeRepo) IncrementUsedCount(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE qr_codes SET used_count = used_count + 1 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *qrCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.QRCode) error {
	const q = `
INSERT INTO qr_codes (
  id, event_id, type, expires_at, is_active, used_count, created_by, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
) ON CONFLICT (id) DO UPDATE SET
  expires_at=$4, is_active=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.EventID, c.Type, c.ExpiresAt, c.IsActive, c.UsedCount, c.CreatedBy, c.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
