package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmendes/bedboard/internal/models"
	"github.com/jmendes/bedboard/internal/ward"
)

// mockAdapter records sent alerts and can simulate failures.
type mockAdapter struct {
	mu     sync.Mutex
	sent   []Alert
	fail   error
	closed bool
}

func (m *mockAdapter) Send(_ context.Context, alert Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, alert)
	return nil
}

func (m *mockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockAdapter) alerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockAdapter) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNewDispatcher_RequiresAdapter(t *testing.T) {
	if _, err := NewDispatcher(nil, nil); err == nil {
		t.Error("NewDispatcher(nil) error = nil, want error")
	}
}

func TestFromEvent(t *testing.T) {
	tests := []struct {
		name         string
		evt          ward.Event
		wantAlert    bool
		wantSeverity string
	}{
		{
			"critical arrival",
			ward.Event{Kind: ward.EventQueueUpdated, Patient: &models.Patient{ID: "P-1", Name: "Ada", TriageLevel: 1, Condition: "Critical"}},
			true, SeverityCritical,
		},
		{
			"routine arrival",
			ward.Event{Kind: ward.EventQueueUpdated, Patient: &models.Patient{ID: "P-2", TriageLevel: 3}},
			false, "",
		},
		{
			"queue change without trigger patient",
			ward.Event{Kind: ward.EventQueueUpdated},
			false, "",
		},
		{
			"bed removed",
			ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"},
			true, SeverityInfo,
		},
		{
			"bed update",
			ward.Event{Kind: ward.EventBedUpdated, Bed: &models.Bed{ID: "BED-1"}},
			false, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert, ok := fromEvent(tt.evt)
			if ok != tt.wantAlert {
				t.Fatalf("fromEvent() ok = %v, want %v", ok, tt.wantAlert)
			}
			if ok && alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", alert.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestDispatcher_DeliversCriticalArrival(t *testing.T) {
	adapter := &mockAdapter{}
	d, err := NewDispatcher(adapter, nil)
	if err != nil {
		t.Fatalf("NewDispatcher() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Publish(ward.Event{
		Kind:    ward.EventQueueUpdated,
		Patient: &models.Patient{ID: "P-1", Name: "Ada Lovelace", TriageLevel: 1, Condition: "Critical"},
	})

	waitFor(t, func() bool { return len(adapter.alerts()) == 1 })
	got := adapter.alerts()[0]
	if got.Severity != SeverityCritical {
		t.Errorf("severity = %q, want critical", got.Severity)
	}
	if len(got.Fields) != 2 {
		t.Errorf("fields = %d, want triage level and condition", len(got.Fields))
	}
}

func TestDispatcher_IgnoresRoutineEvents(t *testing.T) {
	adapter := &mockAdapter{}
	d, _ := NewDispatcher(adapter, nil)

	d.Publish(ward.Event{Kind: ward.EventBedUpdated, Bed: &models.Bed{ID: "BED-1"}})
	d.Publish(ward.Event{Kind: ward.EventQueueUpdated, Patient: &models.Patient{TriageLevel: 4}})

	select {
	case alert := <-d.pending:
		t.Errorf("routine event queued an alert: %+v", alert)
	default:
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	adapter := &mockAdapter{}
	d, _ := NewDispatcher(adapter, nil)

	// No Run loop draining; overfill the buffer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < dispatchBuffer+10; i++ {
			d.Publish(ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	if len(d.pending) != dispatchBuffer {
		t.Errorf("pending = %d, want %d (overflow dropped)", len(d.pending), dispatchBuffer)
	}
}

func TestDispatcher_SendFailureDoesNotStopLoop(t *testing.T) {
	adapter := &mockAdapter{fail: errors.New("rate limited")}
	d, _ := NewDispatcher(adapter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Publish(ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"})

	// Heal the adapter; the next alert must still flow.
	adapter.mu.Lock()
	adapter.fail = nil
	adapter.mu.Unlock()
	d.Publish(ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-2"})

	waitFor(t, func() bool { return len(adapter.alerts()) >= 1 })
}

func TestDispatcher_ClosesAdapterOnShutdown(t *testing.T) {
	adapter := &mockAdapter{}
	d, _ := NewDispatcher(adapter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)
	cancel()

	waitFor(t, adapter.isClosed)
}

func TestAlertColor(t *testing.T) {
	if (Alert{Severity: SeverityCritical}).Color() != colorCritical {
		t.Error("critical alert should use the critical color")
	}
	if (Alert{Severity: SeverityInfo}).Color() != colorInfo {
		t.Error("info alert should use the info color")
	}
}
