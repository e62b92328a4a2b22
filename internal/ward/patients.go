package ward

import (
	"fmt"
	"strings"

	"github.com/jmendes/bedboard/internal/models"
)

// defaultCondition is applied when intake omits a condition descriptor.
const defaultCondition = "Stable"

// maxPatientIDSpace bounds the numeric suffix of generated patient ids.
const maxPatientIDSpace = 10000

// AddPatientOpts holds intake parameters for a new patient.
type AddPatientOpts struct {
	Name        string
	TriageLevel int
	Condition   string
}

// FindPatients returns the waiting patients whose id or name contains the
// query, case-insensitively. An empty query returns the full queue in
// arrival order. Linear scan.
func (r *Registry) FindPatients(query string) []models.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Patient, 0, len(r.queue))
	q := strings.ToLower(query)
	for _, p := range r.queue {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.ID), q) &&
			!strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Patient returns a waiting patient by exact id.
func (r *Registry) Patient(id string) (models.Patient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return models.Patient{}, false
	}
	return *p, true
}

// AddPatient registers an intake: a fresh P-n id, joinedAt stamped now,
// condition defaulted, appended to the waiting queue. Emits a queueUpdate
// carrying the recomputed sorted queue.
func (r *Registry) AddPatient(opts AddPatientOpts) (*models.Patient, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("ward: name is required: %w", ErrValidation)
	}
	if opts.TriageLevel < 1 || opts.TriageLevel > 5 {
		return nil, fmt.Errorf("ward: triage level %d out of range 1-5: %w", opts.TriageLevel, ErrValidation)
	}
	if opts.Condition == "" {
		opts.Condition = defaultCondition
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("P-%d", r.rng.Intn(maxPatientIDSpace))
	for _, exists := r.patients[id]; exists; _, exists = r.patients[id] {
		id = fmt.Sprintf("P-%d", r.rng.Intn(maxPatientIDSpace))
	}

	p := &models.Patient{
		ID:          id,
		Name:        opts.Name,
		TriageLevel: opts.TriageLevel,
		Condition:   opts.Condition,
		JoinedAt:    r.now(),
	}
	r.patients[id] = p
	r.queue = append(r.queue, p)

	r.savePatient(p)
	r.emitQueue(p)

	cp := *p
	return &cp, nil
}

// RemovePatient drops a patient from the waiting queue. The id is
// normalized (trim + case-fold) before matching. A false return is a
// valid negative, not an error: callers probe the queue and the beds in
// turn before concluding a patient is gone.
func (r *Registry) RemovePatient(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removePatientLocked(id)
}

// removePatientLocked is RemovePatient with r.mu already held.
func (r *Registry) removePatientLocked(id string) bool {
	want := normalizeID(id)
	for i, p := range r.queue {
		if normalizeID(p.ID) != want {
			continue
		}
		delete(r.patients, p.ID)
		r.queue = append(r.queue[:i], r.queue[i+1:]...)

		r.deletePatient(p.ID)
		r.emitQueue(p)
		return true
	}
	return false
}

// PurgeOutcome reports where a purged patient was found.
type PurgeOutcome int

const (
	// PurgeNotFound means the id matched neither the queue nor any bed.
	PurgeNotFound PurgeOutcome = iota
	// PurgedFromQueue means the patient was removed from the waiting queue.
	PurgedFromQueue
	// PurgeDischarged means the patient was found admitted and the bed
	// was discharged.
	PurgeDischarged
)

// Purge removes a patient wherever they are: the waiting queue first,
// then the occupant field of any bed (which force-discharges that bed).
// The id is normalized before each probe.
func (r *Registry) Purge(id string) PurgeOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removePatientLocked(id) {
		return PurgedFromQueue
	}

	want := normalizeID(id)
	for _, bid := range r.bedOrder {
		b := r.beds[bid]
		if b.Occupant == nil || normalizeID(b.Occupant.ID) != want {
			continue
		}
		r.dischargeLocked(b)
		return PurgeDischarged
	}
	return PurgeNotFound
}

// normalizeID trims and case-folds an externally supplied patient id.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
