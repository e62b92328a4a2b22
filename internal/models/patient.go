package models

import "time"

// Patient is an emergency intake record. A patient exists in exactly one of
// two places at any time: the waiting queue, or embedded in an Occupied
// bed's Occupant field. TriageLevel runs 1 (most severe) to 5 (least).
type Patient struct {
	ID          string    `gorm:"primaryKey;size:16" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	TriageLevel int       `gorm:"not null" json:"triageLevel"`
	Condition   string    `gorm:"size:256;not null" json:"condition"`
	JoinedAt    time.Time `gorm:"not null" json:"joinedAt"`
}
