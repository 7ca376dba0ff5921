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

var _ repository.EventRepository = (*eventRepo)(nil)

type eventRepo struct{ pool *pgxpool.Pool }

func NewEventRepo(pool *pgxpool.Pool) *eventRepo {
	return &eventRepo{pool: pool}
}

func (r *eventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	const q = `SELECT id, title, description, location, date, activity_type, default_quantity, latitude, longitude, created_by, created_at FROM events WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	e := &model.Event{}
	var lat, lng *float64
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.ActivityType, &e.DefaultQuantity, &lat, &lng, &e.CreatedBy, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if lat != nil && lng != nil {
		e.Coordinates = &model.Coordinates{Latitude: *lat, Longitude: *lng}
	}
	return e, nil
}

func (r *eventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	const q = `
INSERT INTO events (
  id, title, description, location, date, activity_type, default_quantity, latitude, longitude, created_by, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
) ON CONFLICT (id) DO UPDATE SET
  title=$2, description=$3, location=$4, date=$5, activity_type=$6, default_quantity=$7, latitude=$8, longitude=$9;`

	var lat, lng *float64
	if e.Coordinates != nil {
		lat, lng = &e.Coordinates.Latitude, &e.Coordinates.Longitude
	}
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.Title, e.Description, e.Location, e.Date, e.ActivityType, e.DefaultQuantity, lat, lng, e.CreatedBy, e.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
