package api

import (
	"testing"

	"github.com/jmendes/bedboard/internal/models"
	"github.com/jmendes/bedboard/internal/ward"
)

func TestHub_FanOut(t *testing.T) {
	h := NewHub(nil)
	ch1, cancel1 := h.Subscribe()
	ch2, cancel2 := h.Subscribe()
	defer cancel1()
	defer cancel2()

	evt := ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"}
	h.Publish(evt)

	for i, ch := range []<-chan ward.Event{ch1, ch2} {
		select {
		case got := <-ch:
			if got.BedID != "BED-1" {
				t.Errorf("subscriber %d got %+v, want BED-1 removal", i, got)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestHub_AtMostOncePerSubscriber(t *testing.T) {
	h := NewHub(nil)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"})

	<-ch
	select {
	case got := <-ch:
		t.Errorf("second delivery of the same event: %+v", got)
	default:
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(nil)
	ch, cancel := h.Subscribe()
	defer cancel()

	// Overfill the buffer; Publish must never block.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Errorf("received %d events, want buffer size %d (rest dropped)", received, subscriberBuffer)
	}
}

func TestHub_CancelRemovesSubscriber(t *testing.T) {
	h := NewHub(nil)
	_, cancel := h.Subscribe()
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", h.Subscribers())
	}
	cancel()
	if h.Subscribers() != 0 {
		t.Errorf("subscribers = %d after cancel, want 0", h.Subscribers())
	}
	// Double-cancel is safe.
	cancel()
}

func TestEventPayload(t *testing.T) {
	bed := &models.Bed{ID: "BED-1", Ward: "ICU"}
	queue := []models.Patient{{ID: "P-1"}}

	tests := []struct {
		name string
		evt  ward.Event
		want string
	}{
		{"bed update", ward.Event{Kind: ward.EventBedUpdated, Bed: bed}, "bedUpdate"},
		{"bed removed", ward.Event{Kind: ward.EventBedRemoved, BedID: "BED-1"}, "bedRemoved"},
		{"queue update", ward.Event{Kind: ward.EventQueueUpdated, Queue: queue}, "queueUpdate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, data := eventPayload(tt.evt)
			if name != tt.want {
				t.Errorf("event name = %q, want %q", name, tt.want)
			}
			if data == nil {
				t.Error("payload is nil, want the full record")
			}
		})
	}
}
