// Package ward holds the in-memory bed and patient registry and the
// operations that mutate it: status edits, greedy and manual assignment,
// transfers, discharges, and the triage queue. All state lives behind a
// single mutex; persistence and event fan-out are write-through side
// effects performed after the in-memory mutation, so readers always see
// the latest state regardless of sink latency or failure.
package ward

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jmendes/bedboard/internal/models"
	"go.uber.org/zap"
)

// Sink persists registry mutations. Implementations receive the full
// post-mutation record, never a delta, so a restart can rebuild identical
// in-memory state by replaying all persisted rows. Sink failures are
// logged and swallowed: the live in-memory state wins over crash
// consistency.
type Sink interface {
	SaveBed(bed models.Bed) error
	DeleteBed(id string) error
	SavePatient(p models.Patient) error
	DeletePatient(id string) error
}

// NopSink discards all writes. Used by tests and dry runs.
type NopSink struct{}

func (NopSink) SaveBed(models.Bed) error        { return nil }
func (NopSink) DeleteBed(string) error          { return nil }
func (NopSink) SavePatient(models.Patient) error { return nil }
func (NopSink) DeletePatient(string) error      { return nil }

// Registry is the single source of truth for beds and patients. Beds keep
// insertion order so scan-order-dependent behavior (greedy tie-breaks,
// listing) is deterministic.
type Registry struct {
	mu       sync.Mutex
	beds     map[string]*models.Bed
	bedOrder []string
	patients map[string]*models.Patient
	queue    []*models.Patient

	sink     Sink
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	rng      *rand.Rand
}

// Opts holds parameters for creating a Registry.
type Opts struct {
	Sink     Sink
	Notifier Notifier
	Log      *zap.Logger
	Now      func() time.Time // defaults to time.Now
	Seed     int64            // rng seed for bed distances and patient ids; 0 means time-based
}

// New creates an empty Registry.
func New(opts Opts) *Registry {
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Registry{
		beds:     make(map[string]*models.Bed),
		patients: make(map[string]*models.Patient),
		sink:     opts.Sink,
		notifier: opts.Notifier,
		log:      opts.Log,
		now:      opts.Now,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Load replaces registry state with persisted rows, preserving row order
// as insertion order. Every persisted patient re-enters the waiting queue;
// admitted patients live inside their bed's Occupant field and are not
// queue members.
func (r *Registry) Load(beds []models.Bed, patients []models.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.beds = make(map[string]*models.Bed, len(beds))
	r.bedOrder = make([]string, 0, len(beds))
	for i := range beds {
		b := beds[i]
		r.beds[b.ID] = &b
		r.bedOrder = append(r.bedOrder, b.ID)
	}

	r.patients = make(map[string]*models.Patient, len(patients))
	r.queue = make([]*models.Patient, 0, len(patients))
	for i := range patients {
		p := patients[i]
		r.patients[p.ID] = &p
		r.queue = append(r.queue, &p)
	}
}

// Counts returns the number of beds and waiting patients.
func (r *Registry) Counts() (beds, waiting int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.beds), len(r.queue)
}

// snapshotBed returns a deep copy of a bed safe to hand outside the lock.
func snapshotBed(b *models.Bed) models.Bed {
	out := *b
	if b.Occupant != nil {
		oc := *b.Occupant
		out.Occupant = &oc
	}
	return out
}

// saveBed writes the full bed record through the sink. Failures are
// logged, never surfaced: see the package comment.
func (r *Registry) saveBed(b *models.Bed) {
	if err := r.sink.SaveBed(snapshotBed(b)); err != nil {
		r.log.Error("persist bed failed", zap.String("bed", b.ID), zap.Error(err))
	}
}

func (r *Registry) deleteBed(id string) {
	if err := r.sink.DeleteBed(id); err != nil {
		r.log.Error("delete bed row failed", zap.String("bed", id), zap.Error(err))
	}
}

func (r *Registry) savePatient(p *models.Patient) {
	if err := r.sink.SavePatient(*p); err != nil {
		r.log.Error("persist patient failed", zap.String("patient", p.ID), zap.Error(err))
	}
}

func (r *Registry) deletePatient(id string) {
	if err := r.sink.DeletePatient(id); err != nil {
		r.log.Error("delete patient row failed", zap.String("patient", id), zap.Error(err))
	}
}
