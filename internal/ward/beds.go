package ward

import (
	"fmt"
	"strings"

	"github.com/jmendes/bedboard/internal/models"
)

// ListBeds returns snapshots of all beds in insertion order, optionally
// filtered by an exact case-insensitive status match.
func (r *Registry) ListBeds(statusFilter string) []models.Bed {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Bed, 0, len(r.bedOrder))
	for _, id := range r.bedOrder {
		b := r.beds[id]
		if statusFilter != "" && !strings.EqualFold(b.Status, statusFilter) {
			continue
		}
		out = append(out, snapshotBed(b))
	}
	return out
}

// Bed returns a snapshot of a single bed by exact id.
func (r *Registry) Bed(id string) (models.Bed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[id]
	if !ok {
		return models.Bed{}, false
	}
	return snapshotBed(b), true
}

// SetBedStatus edits a bed's status in place. Any of the six enumerated
// statuses is accepted; transition legality is not checked here. Two
// guards keep the occupancy invariant intact: moving a bed off Occupied
// clears its occupant, and moving an empty bed onto Occupied is rejected
// because occupancy is only established through assignment.
func (r *Registry) SetBedStatus(id, status string) (*models.Bed, error) {
	if status == "" {
		return nil, fmt.Errorf("ward: status is required: %w", ErrValidation)
	}
	if !models.ValidStatuses[status] {
		return nil, fmt.Errorf("ward: unknown status %q: %w", status, ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[id]
	if !ok {
		return nil, fmt.Errorf("ward: bed %s: %w", id, ErrNotFound)
	}
	if status == models.StatusOccupied && b.Occupant == nil {
		return nil, fmt.Errorf("ward: bed %s has no occupant, use assignment: %w", id, ErrConflict)
	}

	b.Status = status
	b.StatusChangedAt = r.now()
	if status != models.StatusOccupied {
		b.Occupant = nil
	}

	r.saveBed(b)
	r.emitBed(b)

	snap := snapshotBed(b)
	return &snap, nil
}

// AddBed creates a bed in the given ward with a fresh BED-n id, probing
// sequential numeric suffixes until an unused one is found. The distance
// from the nursing station is an opaque facility metric drawn once at
// creation and never re-randomized.
func (r *Registry) AddBed(wardName string) (*models.Bed, error) {
	if wardName == "" {
		return nil, fmt.Errorf("ward: ward is required: %w", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idNum := len(r.beds) + 1
	id := fmt.Sprintf("BED-%d", idNum)
	for _, exists := r.beds[id]; exists; _, exists = r.beds[id] {
		idNum++
		id = fmt.Sprintf("BED-%d", idNum)
	}

	bedType := models.BedTypeStandard
	if wardName == "ICU" {
		bedType = models.BedTypeCritical
	}

	b := &models.Bed{
		ID:                  id,
		Ward:                wardName,
		Status:              models.StatusAvailable,
		DistanceFromStation: r.rng.Intn(100) + 1,
		Type:                bedType,
		StatusChangedAt:     r.now(),
	}
	r.beds[id] = b
	r.bedOrder = append(r.bedOrder, id)

	r.saveBed(b)
	r.emitBed(b)

	snap := snapshotBed(b)
	return &snap, nil
}

// RemoveBed deletes a bed. A bed with a patient in it cannot be removed.
func (r *Registry) RemoveBed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[id]
	if !ok {
		return fmt.Errorf("ward: bed %s: %w", id, ErrNotFound)
	}
	if b.Status == models.StatusOccupied {
		return fmt.Errorf("ward: bed %s is occupied: %w", id, ErrConflict)
	}

	delete(r.beds, id)
	for i, bid := range r.bedOrder {
		if bid == id {
			r.bedOrder = append(r.bedOrder[:i], r.bedOrder[i+1:]...)
			break
		}
	}

	r.deleteBed(id)
	r.emitBedRemoved(id)
	return nil
}
