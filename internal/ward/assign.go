package ward

import (
	"fmt"
	"time"

	"github.com/jmendes/bedboard/internal/models"
)

// AssignManual admits a patient into a specific bed. The bed must be
// Available. The caller owns the orchestration step of removing the
// patient from the waiting queue afterwards; assignment itself never
// dequeues.
func (r *Registry) AssignManual(bedID string, p *models.Patient) (*models.Bed, error) {
	if p == nil || p.ID == "" {
		return nil, fmt.Errorf("ward: patient is required: %w", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[bedID]
	if !ok {
		return nil, fmt.Errorf("ward: bed %s: %w", bedID, ErrNotFound)
	}
	if b.Status != models.StatusAvailable {
		return nil, fmt.Errorf("ward: bed %s is %s, not Available: %w", bedID, b.Status, ErrConflict)
	}

	r.occupyLocked(b, p)
	snap := snapshotBed(b)
	return &snap, nil
}

// AssignGreedy picks a bed for the patient in two phases: Available beds
// in the wanted ward first, then any Available bed as a fallback. Among
// candidates the minimum distance from the nursing station wins, first
// encountered in insertion order on ties. A (nil, nil) return means no
// bed exists at all — a valid negative result, not an error, signaling
// the caller to suggest a transfer or a wait.
func (r *Registry) AssignGreedy(wantedWard string, p *models.Patient) (*models.Bed, error) {
	if p == nil || p.ID == "" {
		return nil, fmt.Errorf("ward: patient is required: %w", ErrValidation)
	}
	if wantedWard == "" {
		return nil, fmt.Errorf("ward: wanted ward is required: %w", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []*models.Bed
	for _, id := range r.bedOrder {
		b := r.beds[id]
		if b.Status == models.StatusAvailable && b.Ward == wantedWard {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		for _, id := range r.bedOrder {
			b := r.beds[id]
			if b.Status == models.StatusAvailable {
				candidates = append(candidates, b)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	best := candidates[0]
	for _, b := range candidates[1:] {
		if b.DistanceFromStation < best.DistanceFromStation {
			best = b
		}
	}

	r.occupyLocked(best, p)
	snap := snapshotBed(best)
	return &snap, nil
}

// Transfer moves the occupant of one bed into another. The source must be
// Occupied and the target Available. The target goes Occupied, the source
// goes Cleaning, and each bed persists and emits its own change event
// (target first, then source).
func (r *Registry) Transfer(sourceID, targetID string) (source, target *models.Bed, err error) {
	if sourceID == "" || targetID == "" {
		return nil, nil, fmt.Errorf("ward: source and target bed ids are required: %w", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.beds[sourceID]
	if !ok {
		return nil, nil, fmt.Errorf("ward: bed %s: %w", sourceID, ErrNotFound)
	}
	tgt, ok := r.beds[targetID]
	if !ok {
		return nil, nil, fmt.Errorf("ward: bed %s: %w", targetID, ErrNotFound)
	}
	if src.Status != models.StatusOccupied {
		return nil, nil, fmt.Errorf("ward: source bed %s is %s, not Occupied: %w", sourceID, src.Status, ErrConflict)
	}
	if tgt.Status != models.StatusAvailable {
		return nil, nil, fmt.Errorf("ward: target bed %s is %s, not Available: %w", targetID, tgt.Status, ErrConflict)
	}

	now := r.now()
	tgt.Status = models.StatusOccupied
	tgt.Occupant = src.Occupant
	tgt.StatusChangedAt = now
	src.Status = models.StatusCleaning
	src.Occupant = nil
	src.StatusChangedAt = now

	r.saveBed(tgt)
	r.saveBed(src)
	r.emitBed(tgt)
	r.emitBed(src)

	srcSnap := snapshotBed(src)
	tgtSnap := snapshotBed(tgt)
	return &srcSnap, &tgtSnap, nil
}

// Discharge vacates a bed: status Cleaning, occupant cleared. The patient
// leaves the active care pipeline entirely and is not re-queued. A
// missing bed returns (nil, nil): callers treat it as already empty.
func (r *Registry) Discharge(bedID string) (*models.Bed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[bedID]
	if !ok {
		return nil, nil
	}

	r.dischargeLocked(b)
	snap := snapshotBed(b)
	return &snap, nil
}

// dischargeLocked applies the discharge mutation with r.mu held.
func (r *Registry) dischargeLocked(b *models.Bed) {
	b.Status = models.StatusCleaning
	b.Occupant = nil
	b.StatusChangedAt = r.now()

	r.saveBed(b)
	r.emitBed(b)
}

// occupyLocked performs the Available→Occupied check-and-set tail shared
// by manual and greedy assignment. Callers must hold r.mu and have
// verified the bed is Available. The patient record is copied so the bed
// exclusively owns its occupant.
func (r *Registry) occupyLocked(b *models.Bed, p *models.Patient) {
	oc := *p
	b.Status = models.StatusOccupied
	b.Occupant = &oc
	b.StatusChangedAt = r.now()

	r.saveBed(b)
	r.emitBed(b)
}

// SweepCleaning returns every bed that has been Cleaning for at least the
// turnover window to Available, persisting and emitting a change event
// per bed. Returns snapshots of the flipped beds.
func (r *Registry) SweepCleaning(window time.Duration) []models.Bed {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var flipped []models.Bed
	for _, id := range r.bedOrder {
		b := r.beds[id]
		if b.Status != models.StatusCleaning {
			continue
		}
		if now.Sub(b.StatusChangedAt) < window {
			continue
		}
		b.Status = models.StatusAvailable
		b.StatusChangedAt = now

		r.saveBed(b)
		r.emitBed(b)
		flipped = append(flipped, snapshotBed(b))
	}
	return flipped
}
