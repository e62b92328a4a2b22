package ward

import (
	"testing"
	"time"

	"github.com/jmendes/bedboard/internal/models"
)

func TestDirectory_MergesQueueAndAdmitted(t *testing.T) {
	r, _ := newTestRegistry()
	r.Load(
		[]models.Bed{bed("BED-1", "ICU", models.StatusAvailable, 3)},
		[]models.Patient{
			patient("P-100", "Ada", 3, fixedNow.Add(-3*time.Hour)),
			patient("P-200", "Grace", 1, fixedNow),
		},
	)
	admitted := patient("P-300", "Edsger", 2, fixedNow)
	if _, err := r.AssignManual("BED-1", &admitted); err != nil {
		t.Fatalf("AssignManual() error: %v", err)
	}

	got := r.Directory()
	if len(got) != 3 {
		t.Fatalf("Directory() = %d entries, want 3", len(got))
	}

	// Waiting entries come first, in triage order (P-100 outscores P-200).
	if got[0].ID != "P-100" || got[0].Status != "Waiting" || got[0].Location != "Waiting Room" {
		t.Errorf("entry 0 = %+v, want waiting P-100", got[0])
	}
	if got[1].ID != "P-200" || got[1].Status != "Waiting" {
		t.Errorf("entry 1 = %+v, want waiting P-200", got[1])
	}
	if got[2].ID != "P-300" || got[2].Status != "Admitted" || got[2].Location != "BED-1" || got[2].BedID != "BED-1" || got[2].Ward != "ICU" {
		t.Errorf("entry 2 = %+v, want P-300 admitted in BED-1", got[2])
	}
}

func TestDirectory_SkipsOccupiedBedWithoutOccupant(t *testing.T) {
	// An Occupied bed with a nil occupant is a data inconsistency; the
	// directory must not render a phantom patient.
	r, _ := newTestRegistry()
	loadBeds(r, bed("BED-1", "ICU", models.StatusOccupied, 3))

	if got := r.Directory(); len(got) != 0 {
		t.Errorf("Directory() = %v, want empty", got)
	}
}

func TestDirectory_Empty(t *testing.T) {
	r, _ := newTestRegistry()
	if got := r.Directory(); len(got) != 0 {
		t.Errorf("Directory() on empty registry = %v, want empty", got)
	}
}

func TestAudit(t *testing.T) {
	r, _ := newTestRegistry()
	r.Load(
		[]models.Bed{bed("BED-1", "ICU", models.StatusAvailable, 3)},
		[]models.Patient{patient("P-100", "Ada", 2, fixedNow)},
	)
	admitted := patient("P-200", "Grace", 1, fixedNow)
	if _, err := r.AssignManual("BED-1", &admitted); err != nil {
		t.Fatalf("AssignManual() error: %v", err)
	}

	snap := r.Audit()
	if len(snap.Queue) != 1 || snap.Queue[0].ID != "P-100" {
		t.Errorf("audit queue = %v, want [P-100]", snap.Queue)
	}
	if len(snap.Beds) != 1 || snap.Beds[0].ID != "P-200" || snap.Beds[0].Bed != "BED-1" {
		t.Errorf("audit beds = %v, want [P-200 in BED-1]", snap.Beds)
	}
	if snap.TotalActive != 2 {
		t.Errorf("totalActive = %d, want 2", snap.TotalActive)
	}
}
