package repository

import (
	"context"

	"food-rescue-rewards/internal/domain/model"
)

type EventRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Event, error)
	Save(ctx context.Context, tx Tx, e *model.Event) error
}
