package repository

import (
	"context"

	"food-rescue-rewards/internal/domain/model"
)

type QRCodeRepository interface {
	// FindActive returns the QR code for (event, type) with
	// isActive = true AND expiresAt > now, or ErrNotFound.
	FindActive(ctx context.Context, tx Tx, eventID string, typ model.QRType) (*model.QRCode, error)
	// IncrementUsedCount bumps usedCount atomically at the storage
	// layer. Never read-modify-write in application code.
	IncrementUsedCount(ctx context.Context, tx Tx, id string) error
	Save(ctx context.Context, tx Tx, q *model.QRCode) error
}
