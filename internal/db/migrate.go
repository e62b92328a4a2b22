package db

import (
	"fmt"
	"math/rand"

	"github.com/jmendes/bedboard/internal/config"
	"github.com/jmendes/bedboard/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the persisted GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Bed{},
		&models.Patient{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedBeds creates the configured ward complement if the beds table is
// empty. Returns the number of beds created (0 when already seeded).
// Distances are drawn once, 1..MaxDistance per ward, and never change.
func SeedBeds(db *gorm.DB, wards []config.WardConfig, rng *rand.Rand) (int, error) {
	var count int64
	if err := db.Model(&models.Bed{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("db: count beds: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	var beds []models.Bed
	n := 1
	for _, w := range wards {
		for i := 0; i < w.Beds; i++ {
			beds = append(beds, models.Bed{
				ID:                  fmt.Sprintf("BED-%d", n),
				Ward:                w.Name,
				Status:              models.StatusAvailable,
				DistanceFromStation: rng.Intn(w.MaxDistance) + 1,
				Type:                w.BedType,
			})
			n++
		}
	}
	if len(beds) == 0 {
		return 0, nil
	}
	if err := db.Create(&beds).Error; err != nil {
		return 0, fmt.Errorf("db: seed beds: %w", err)
	}
	return len(beds), nil
}

// LoadState reads every persisted bed and patient, decoding occupant
// payloads, so the registry can be rebuilt at startup.
func LoadState(db *gorm.DB) ([]models.Bed, []models.Patient, error) {
	var beds []models.Bed
	if err := db.Order("id").Find(&beds).Error; err != nil {
		return nil, nil, fmt.Errorf("db: load beds: %w", err)
	}
	for i := range beds {
		occ, err := decodeOccupant(beds[i].OccupantData)
		if err != nil {
			return nil, nil, fmt.Errorf("db: bed %s occupant: %w", beds[i].ID, err)
		}
		beds[i].Occupant = occ
	}

	var patients []models.Patient
	if err := db.Order("joined_at").Find(&patients).Error; err != nil {
		return nil, nil, fmt.Errorf("db: load patients: %w", err)
	}
	return beds, patients, nil
}

// Reset deletes all rows so a fresh seed can run.
func Reset(db *gorm.DB) error {
	if err := db.Where("1 = 1").Delete(&models.Bed{}).Error; err != nil {
		return fmt.Errorf("db: reset beds: %w", err)
	}
	if err := db.Where("1 = 1").Delete(&models.Patient{}).Error; err != nil {
		return fmt.Errorf("db: reset patients: %w", err)
	}
	return nil
}
