package models

import "time"

// Bed statuses. Beds cycle through these indefinitely; there is no terminal
// state other than deletion, which requires the bed not be Occupied.
const (
	StatusAvailable   = "Available"
	StatusOccupied    = "Occupied"
	StatusCleaning    = "Cleaning"
	StatusReserved    = "Reserved"
	StatusMaintenance = "Maintenance"
	StatusDamaged     = "Damaged"
)

// Bed capability tags.
const (
	BedTypeCritical = "Critical"
	BedTypeStandard = "Standard"
)

// ValidStatuses is the closed set of bed statuses accepted by status edits.
var ValidStatuses = map[string]bool{
	StatusAvailable:   true,
	StatusOccupied:    true,
	StatusCleaning:    true,
	StatusReserved:    true,
	StatusMaintenance: true,
	StatusDamaged:     true,
}

// Bed is a single hospital bed. The in-memory registry is the source of
// truth; rows in the beds table are a write-through copy used only to
// rebuild state at startup. The occupant is embedded in the bed while the
// patient is admitted and serialized into OccupantData for persistence.
type Bed struct {
	ID                  string    `gorm:"primaryKey;size:16" json:"id"`
	Ward                string    `gorm:"size:32;not null;index" json:"ward"`
	Status              string    `gorm:"size:16;not null;default:Available;index" json:"status"`
	DistanceFromStation int       `gorm:"not null" json:"distanceFromStation"`
	Type                string    `gorm:"size:16;not null" json:"type"`
	StatusChangedAt     time.Time `json:"statusChangedAt"`

	Occupant     *Patient `gorm:"-" json:"patient,omitempty"`
	OccupantData string   `gorm:"type:text" json:"-"`
}
