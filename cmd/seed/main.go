package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/cargolink/freight-backend/internal/config"
	"github.com/cargolink/freight-backend/internal/db"
	"github.com/cargolink/freight-backend/internal/model"
)

const (
	demoShipper = "demo-shipper"
	demoHauler  = "demo-hauler"
	demoPoster  = "demo-poster"
	demoDriver  = "demo-driver"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var count int64
	if err := gdb.Model(&model.Load{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count loads: %w", err)
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("loads already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		load := &model.Load{
			ShipperUID:  demoShipper,
			Origin:      "Rotterdam",
			Destination: "Munich",
			CargoType:   "palletized",
			WeightKg:    18000,
			PickupDate:  "2026-09-15",
		}
		if err := tx.Create(load).Error; err != nil {
			return err
		}
		offer := &model.LoadOffer{
			LoadID:      load.ID,
			ShipperUID:  demoShipper,
			HaulerUID:   demoHauler,
			AmountCents: 185000,
			Status:      model.OfferStatusPending,
		}
		if err := tx.Create(offer).Error; err != nil {
			return err
		}
		thread := &model.Thread{
			Kind:      model.ThreadKindLoadOffer,
			OwnerID:   offer.ID,
			PartyAUID: demoShipper,
			PartyBUID: demoHauler,
			IsActive:  true,
		}
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		first := &model.Message{
			ThreadID:   thread.ID,
			SenderUID:  demoShipper,
			SenderRole: "shipper",
			Body:       "Can you do Tuesday pickup?",
		}
		if err := tx.Create(first).Error; err != nil {
			return err
		}
		if err := tx.Model(thread).Updates(map[string]interface{}{
			"first_message_sent": true,
			"updated_at":         tx.NowFunc(),
		}).Error; err != nil {
			return err
		}

		job := &model.Job{
			PosterUID:   demoPoster,
			Title:       "Long-haul driver (EU)",
			Description: "Regular Rotterdam-Munich runs, ADR a plus.",
			Location:    "Rotterdam",
			SalaryCents: 380000,
			IsOpen:      true,
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		truck := &model.Truck{
			HaulerUID:  demoHauler,
			Plate:      "NL-84-KXT",
			TruckType:  "curtainsider",
			CapacityKg: 24000,
			BaseCity:   "Rotterdam",
		}
		if err := tx.Create(truck).Error; err != nil {
			return err
		}
		listing := &model.ResourceListing{
			ListerUID: demoDriver,
			Title:     "Reefer trailer, weekends",
			Category:  "trailer",
			RateCents: 22000,
			City:      "Utrecht",
			IsOpen:    true,
		}
		if err := tx.Create(listing).Error; err != nil {
			return err
		}
		log.Printf("seeded demo load %d, offer %d, thread %d, job %d, truck %d, listing %d",
			load.ID, offer.ID, thread.ID, job.ID, truck.ID, listing.ID)
		return nil
	})
}
