package ward

import (
	"time"

	"github.com/jmendes/bedboard/internal/models"
)

// Patient placement states as shown in the directory.
const (
	placementWaiting  = "Waiting"
	placementAdmitted = "Admitted"
)

// waitingRoomLocation is the display location for queued patients.
const waitingRoomLocation = "Waiting Room"

// DirectoryEntry is one row of the unified patient listing: a patient
// plus where they currently are.
type DirectoryEntry struct {
	models.Patient
	Status   string `json:"status"`
	Location string `json:"location"`
	Ward     string `json:"ward,omitempty"`
	BedID    string `json:"bedId,omitempty"`
}

// Directory merges the triage-sorted waiting queue with the occupants of
// all Occupied beds into one read-only listing. An Occupied bed with no
// occupant is a data inconsistency and is skipped rather than rendered.
func (r *Registry) Directory() []DirectoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := rankQueue(r.queue, r.now())
	out := make([]DirectoryEntry, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, DirectoryEntry{
			Patient:  p,
			Status:   placementWaiting,
			Location: waitingRoomLocation,
		})
	}

	for _, id := range r.bedOrder {
		b := r.beds[id]
		if b.Status != models.StatusOccupied || b.Occupant == nil {
			continue
		}
		out = append(out, DirectoryEntry{
			Patient:  *b.Occupant,
			Status:   placementAdmitted,
			Location: b.ID,
			Ward:     b.Ward,
			BedID:    b.ID,
		})
	}
	return out
}

// AuditEntry is one active patient record in an audit snapshot.
type AuditEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Bed  string `json:"bed,omitempty"`
}

// AuditSnapshot is a point-in-time dump of every active patient id for
// troubleshooting, split by where the record lives.
type AuditSnapshot struct {
	Timestamp   time.Time    `json:"timestamp"`
	Queue       []AuditEntry `json:"queue"`
	Beds        []AuditEntry `json:"beds"`
	TotalActive int          `json:"totalActive"`
}

// Audit returns an audit snapshot of the registry.
func (r *Registry) Audit() AuditSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := AuditSnapshot{
		Timestamp: r.now(),
		Queue:     []AuditEntry{},
		Beds:      []AuditEntry{},
	}
	for _, p := range rankQueue(r.queue, r.now()) {
		snap.Queue = append(snap.Queue, AuditEntry{ID: p.ID, Name: p.Name, Type: "Queue"})
	}
	for _, id := range r.bedOrder {
		b := r.beds[id]
		if b.Occupant == nil {
			continue
		}
		snap.Beds = append(snap.Beds, AuditEntry{ID: b.Occupant.ID, Name: b.Occupant.Name, Type: "Bed", Bed: b.ID})
	}
	snap.TotalActive = len(snap.Queue) + len(snap.Beds)
	return snap
}
