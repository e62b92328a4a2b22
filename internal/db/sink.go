package db

import (
	"encoding/json"
	"fmt"

	"github.com/jmendes/bedboard/internal/models"
	"gorm.io/gorm"
)

// Sink is the gorm-backed durability sink. Every write carries the full
// post-mutation record; the occupant travels as a JSON text column so a
// restart rebuilds the identical in-memory state.
type Sink struct {
	db *gorm.DB
}

// NewSink creates a Sink over an open connection.
func NewSink(db *gorm.DB) *Sink {
	return &Sink{db: db}
}

// SaveBed upserts the full bed row.
func (s *Sink) SaveBed(bed models.Bed) error {
	data, err := encodeOccupant(bed.Occupant)
	if err != nil {
		return fmt.Errorf("db: encode occupant for bed %s: %w", bed.ID, err)
	}
	bed.OccupantData = data
	if err := s.db.Save(&bed).Error; err != nil {
		return fmt.Errorf("db: save bed %s: %w", bed.ID, err)
	}
	return nil
}

// DeleteBed removes a bed row.
func (s *Sink) DeleteBed(id string) error {
	if err := s.db.Delete(&models.Bed{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("db: delete bed %s: %w", id, err)
	}
	return nil
}

// SavePatient upserts the full patient row.
func (s *Sink) SavePatient(p models.Patient) error {
	if err := s.db.Save(&p).Error; err != nil {
		return fmt.Errorf("db: save patient %s: %w", p.ID, err)
	}
	return nil
}

// DeletePatient removes a patient row.
func (s *Sink) DeletePatient(id string) error {
	if err := s.db.Delete(&models.Patient{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("db: delete patient %s: %w", id, err)
	}
	return nil
}

// encodeOccupant serializes a bed's occupant to its JSON column value;
// empty string for a vacant bed.
func encodeOccupant(p *models.Patient) (string, error) {
	if p == nil {
		return "", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeOccupant is the inverse of encodeOccupant.
func decodeOccupant(data string) (*models.Patient, error) {
	if data == "" {
		return nil, nil
	}
	var p models.Patient
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
