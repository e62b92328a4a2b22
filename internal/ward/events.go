package ward

import "github.com/jmendes/bedboard/internal/models"

// EventKind names a registry change event. The names are the wire event
// names pushed to subscribers.
type EventKind string

const (
	// EventBedUpdated carries the full updated bed record.
	EventBedUpdated EventKind = "bedUpdate"
	// EventBedRemoved carries only the removed bed's id so subscribers
	// evict the entity rather than patch it.
	EventBedRemoved EventKind = "bedRemoved"
	// EventQueueUpdated carries the full recomputed triage-sorted queue.
	EventQueueUpdated EventKind = "queueUpdate"
)

// Event is a single registry change notification. Exactly one of Bed,
// BedID or Queue is meaningful, per Kind. Payloads are full records,
// never partial diffs. Patient, when set on a queue event, is the patient
// whose intake or removal triggered the change.
type Event struct {
	Kind    EventKind
	Bed     *models.Bed
	BedID   string
	Queue   []models.Patient
	Patient *models.Patient
}

// Notifier receives change events. Delivery is at-most-once per currently
// connected subscriber; implementations must not block the caller.
type Notifier interface {
	Publish(evt Event)
}

// NopNotifier drops all events.
type NopNotifier struct{}

func (NopNotifier) Publish(Event) {}

// MultiNotifier fans a single event out to several notifiers in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(evt Event) {
	for _, n := range m {
		n.Publish(evt)
	}
}

// emitBed publishes a bedUpdate with a snapshot of the bed.
func (r *Registry) emitBed(b *models.Bed) {
	snap := snapshotBed(b)
	r.notifier.Publish(Event{Kind: EventBedUpdated, Bed: &snap})
}

// emitBedRemoved publishes a bedRemoved carrying only the id.
func (r *Registry) emitBedRemoved(id string) {
	r.notifier.Publish(Event{Kind: EventBedRemoved, BedID: id})
}

// emitQueue publishes a queueUpdate with the recomputed sorted queue.
// Callers must hold r.mu.
func (r *Registry) emitQueue(trigger *models.Patient) {
	var p *models.Patient
	if trigger != nil {
		cp := *trigger
		p = &cp
	}
	r.notifier.Publish(Event{
		Kind:    EventQueueUpdated,
		Queue:   rankQueue(r.queue, r.now()),
		Patient: p,
	})
}
