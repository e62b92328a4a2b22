// Package alerts pushes staff notifications for bed-management events to
// chat platforms (Slack, Discord).
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/jmendes/bedboard/internal/ward"
	"go.uber.org/zap"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityCritical = "critical"
)

// Colors used as sidebar hints by the platform adapters.
const (
	colorInfo     = "#439fe0"
	colorCritical = "#d00000"
)

// Alert is one staff notification formatted for chat delivery.
type Alert struct {
	Severity string
	Title    string
	Body     string
	Fields   []Field
}

// Field is a key-value pair attached to an alert.
type Field struct {
	Name  string
	Value string
}

// Color returns the sidebar color hint for the alert's severity.
func (a Alert) Color() string {
	if a.Severity == SeverityCritical {
		return colorCritical
	}
	return colorInfo
}

// Adapter is the interface platform-specific senders must satisfy.
type Adapter interface {
	// Send delivers an alert to the platform.
	Send(ctx context.Context, alert Alert) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// dispatchBuffer bounds the number of pending alerts. Chat delivery is
// best-effort and must never hold up a bed operation.
const dispatchBuffer = 64

// Dispatcher watches registry events, converts the ones staff care about
// into alerts and hands them to an Adapter from a background goroutine.
// It plugs into the registry as a notifier.
type Dispatcher struct {
	adapter Adapter
	log     *zap.Logger
	pending chan Alert
}

// NewDispatcher creates a Dispatcher sending through adapter.
func NewDispatcher(adapter Adapter, log *zap.Logger) (*Dispatcher, error) {
	if adapter == nil {
		return nil, fmt.Errorf("alerts: adapter is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		adapter: adapter,
		log:     log,
		pending: make(chan Alert, dispatchBuffer),
	}, nil
}

// Publish implements ward.Notifier. It never blocks: when the pending
// buffer is full the alert is dropped and logged.
func (d *Dispatcher) Publish(evt ward.Event) {
	alert, ok := fromEvent(evt)
	if !ok {
		return
	}
	select {
	case d.pending <- alert:
	default:
		d.log.Warn("alert buffer full, dropping", zap.String("title", alert.Title))
	}
}

// Run drains pending alerts until ctx is cancelled, then closes the
// adapter. Call it from its own goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	defer func() {
		if err := d.adapter.Close(); err != nil {
			d.log.Warn("alert adapter close", zap.Error(err))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-d.pending:
			sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := d.adapter.Send(sendCtx, alert)
			cancel()
			if err != nil {
				d.log.Warn("alert delivery failed",
					zap.String("title", alert.Title),
					zap.Error(err),
				)
				continue
			}
			d.log.Debug("alert delivered", zap.String("title", alert.Title))
		}
	}
}

// fromEvent decides whether a registry event warrants a staff alert.
// Triage level 1 arrivals page as critical; bed removals are routine
// capacity changes worth a heads-up.
func fromEvent(evt ward.Event) (Alert, bool) {
	switch evt.Kind {
	case ward.EventQueueUpdated:
		p := evt.Patient
		if p == nil || p.TriageLevel != 1 {
			return Alert{}, false
		}
		return Alert{
			Severity: SeverityCritical,
			Title:    "Critical patient in ER queue",
			Body:     fmt.Sprintf("%s (%s) is waiting for a bed.", p.Name, p.ID),
			Fields: []Field{
				{Name: "Triage Level", Value: "1"},
				{Name: "Condition", Value: p.Condition},
			},
		}, true
	case ward.EventBedRemoved:
		return Alert{
			Severity: SeverityInfo,
			Title:    "Bed removed from service",
			Body:     fmt.Sprintf("Bed %s was decommissioned.", evt.BedID),
		}, true
	default:
		return Alert{}, false
	}
}
