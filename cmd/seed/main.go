package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"food-rescue-rewards/internal/config"
	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	pg "food-rescue-rewards/internal/infra/db/postgres"
)

// Seeds a demo event with one volunteer and one recipient QR code so
// the scan endpoints can be exercised locally.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	eventRepo := pg.NewEventRepo(pool)
	qrRepo := pg.NewQRCodeRepo(pool)

	const eventID = "demo-gleaning-tlv"

	// If the demo event already exists, do nothing.
	if existing, err := eventRepo.FindByID(ctx, nil, eventID); err == nil {
		fmt.Printf("event %q already present (%s). No changes.\n", existing.ID, existing.Title)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("find event: %v", err)
	}

	eventDate := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	event := &model.Event{
		ID:              eventID,
		Title:           "Carmel Market Gleaning",
		Description:     "Weekly surplus-food rescue and sorting shift",
		Location:        "Carmel Market, Tel Aviv",
		Date:            eventDate,
		ActivityType:    model.ActivityTypeSorting,
		DefaultQuantity: 5,
		Coordinates:     &model.Coordinates{Latitude: 32.0681, Longitude: 34.7682},
		CreatedBy:       "seed",
		CreatedAt:       time.Now(),
	}
	if err := eventRepo.Save(ctx, nil, event); err != nil {
		log.Fatalf("save event: %v", err)
	}
	fmt.Printf("seeded event: %s (%s @ %s)\n", event.ID, event.Title, event.Date.Format(time.RFC3339))

	for _, typ := range []model.QRType{model.QRTypeVolunteer, model.QRTypeRecipient} {
		code := &model.QRCode{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			Type:      typ,
			ExpiresAt: eventDate.Add(24 * time.Hour),
			IsActive:  true,
			CreatedBy: "seed",
			CreatedAt: time.Now(),
		}
		if err := qrRepo.Save(ctx, nil, code); err != nil {
			log.Fatalf("save %s qr code: %v", typ, err)
		}
		fmt.Printf("seeded qr code: %s type=%s expires=%s\n", code.ID, code.Type, code.ExpiresAt.Format(time.RFC3339))
	}

	fmt.Println("Seeding complete.")
}
