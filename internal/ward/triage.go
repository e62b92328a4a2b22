package ward

import (
	"sort"
	"time"

	"github.com/jmendes/bedboard/internal/models"
)

// Score computes a patient's queue priority: triage level minus hours
// waited. Lower scores sort first, so a long wait erodes the advantage of
// a low severity number while a fresh triage-1 still starts far ahead.
func Score(p models.Patient, now time.Time) float64 {
	return float64(p.TriageLevel) - hoursWaited(p, now)
}

// hoursWaited returns the hours since queue entry, clamped to zero when
// the join time is missing or in the future.
func hoursWaited(p models.Patient, now time.Time) float64 {
	if p.JoinedAt.IsZero() {
		return 0
	}
	h := now.Sub(p.JoinedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// rankQueue returns a copy of the queue ordered by ascending score. The
// sort is stable: repeated calls with unchanged input and clock yield an
// identical ordering.
func rankQueue(queue []*models.Patient, now time.Time) []models.Patient {
	out := make([]models.Patient, len(queue))
	for i, p := range queue {
		out[i] = *p
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i], now) < Score(out[j], now)
	})
	return out
}

// SortedQueue returns the waiting queue in triage-priority order. The
// order is recomputed from the live clock on every call, never cached.
func (r *Registry) SortedQueue() []models.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rankQueue(r.queue, r.now())
}
