package l7track

import (
	"sort"

	"github.com/lumentouch/touchcore/internal/touch/l5screen"
)

// Params holds the tracker's global tuning knobs (spec.md §4.7, §6).
type Params struct {
	Beta           float64 // position EMA weight on the fresh measurement
	Gamma          float64 // velocity EMA weight on the instantaneous estimate
	BirthGrace     int     // frames survived (matched) before a Touch confirms
	DeathThreshold int     // consecutive missed frames before a confirmed Touch dies
	RGate          float64 // normalized-space gating distance for assignment
}

// DefaultParams returns spec.md's stated defaults.
func DefaultParams() Params {
	return Params{
		Beta:           0.5,
		Gamma:          0.3,
		BirthGrace:     2,
		DeathThreshold: 3,
		RGate:          0.08,
	}
}

// Tracker maintains the set of Touches for one screen and advances them one
// frame at a time. It is not safe for concurrent use; spec.md §5 assigns
// exactly one fusion/tracker/emitter goroutine per screen so the tracker
// itself never needs internal locking, the same division of responsibility
// the teacher corpus draws between per-sensor workers and a single
// state-owning Tracker.
type Tracker struct {
	screenID int
	params   Params
	counter  *SessionCounter

	touches      map[uint32]*Touch
	hasPrevFrame bool
	lastNanos    int64
}

// NewTracker creates a Tracker for one screen. counter must be shared with
// every other Tracker in the pipeline so session ids stay globally unique.
func NewTracker(screenID int, params Params, counter *SessionCounter) *Tracker {
	return &Tracker{
		screenID: screenID,
		params:   params,
		counter:  counter,
		touches:  make(map[uint32]*Touch),
	}
}

// ScreenID returns the screen this tracker owns.
func (t *Tracker) ScreenID() int { return t.screenID }

// Touches returns a snapshot of currently-held Touches (confirmed and
// tentative), sorted ascending by SessionID.
func (t *Tracker) Touches() []Touch {
	out := make([]Touch, 0, len(t.touches))
	for _, touch := range t.sortedTouches() {
		out = append(out, *touch)
	}
	return out
}

// AliveConfirmedSessionIDs returns the session ids of every confirmed Touch,
// sorted ascending, the set the TUIO emitter needs for its `alive` message.
func (t *Tracker) AliveConfirmedSessionIDs() []uint32 {
	var ids []uint32
	for _, touch := range t.sortedTouches() {
		if touch.Confirmed {
			ids = append(ids, touch.SessionID)
		}
	}
	return ids
}

func (t *Tracker) sortedTouches() []*Touch {
	out := make([]*Touch, 0, len(t.touches))
	for _, touch := range t.touches {
		out = append(out, touch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// Update assigns candidates to existing Touches, smooths matches, births
// unmatched candidates, ages out unmatched Touches, and returns the events
// produced this frame (spec.md §4.7). timestampNanos must be
// non-decreasing across calls for a given Tracker.
func (t *Tracker) Update(candidates []l5screen.MappedCandidate, timestampNanos int64) []TouchEvent {
	dt := 0.0
	if t.hasPrevFrame && timestampNanos > t.lastNanos {
		dt = float64(timestampNanos-t.lastNanos) / 1e9
	}

	existing := t.sortedTouches()
	cost := buildCostMatrix(existing, candidates, dt, t.params.RGate)
	assignment := HungarianAssign(cost)

	var events []TouchEvent
	matchedCandidate := make([]bool, len(candidates))

	for i, touch := range existing {
		col := assignment[i]
		if col < 0 {
			t.handleUnmatched(touch, &events)
			continue
		}
		matchedCandidate[col] = true
		t.applyMatch(touch, candidates[col], dt, timestampNanos, &events)
	}

	for _, touch := range existing {
		if touch.Missed >= deathMissedLimit(touch, t.params) {
			delete(t.touches, touch.SessionID)
		}
	}

	for j, c := range candidates {
		if matchedCandidate[j] {
			continue
		}
		t.birth(c, timestampNanos)
	}

	t.hasPrevFrame = true
	t.lastNanos = timestampNanos
	return events
}

func (t *Tracker) applyMatch(touch *Touch, candidate l5screen.MappedCandidate, dt float64, timestampNanos int64, events *[]TouchEvent) {
	predictedU := touch.U + touch.DU*dt
	predictedV := touch.V + touch.DV*dt

	newU := (1-t.params.Beta)*predictedU + t.params.Beta*candidate.U
	newV := (1-t.params.Beta)*predictedV + t.params.Beta*candidate.V

	var instDU, instDV float64
	if dt > 0 {
		instDU = (candidate.U - touch.U) / dt
		instDV = (candidate.V - touch.V) / dt
	}
	newDU := (1-t.params.Gamma)*touch.DU + t.params.Gamma*instDU
	newDV := (1-t.params.Gamma)*touch.DV + t.params.Gamma*instDV

	wasConfirmed := touch.Confirmed

	touch.U, touch.V = newU, newV
	touch.DU, touch.DV = newDU, newDV
	touch.Missed = 0
	touch.Age++
	touch.LastUpdateNanos = timestampNanos
	if !wasConfirmed && touch.Age >= t.params.BirthGrace {
		touch.Confirmed = true
	}

	switch {
	case touch.Confirmed && !wasConfirmed:
		*events = append(*events, t.event(EventAdd, touch))
	case touch.Confirmed && wasConfirmed:
		*events = append(*events, t.event(EventUpdate, touch))
	}
}

func (t *Tracker) handleUnmatched(touch *Touch, events *[]TouchEvent) {
	touch.Missed++
	if touch.Confirmed && touch.Missed >= t.params.DeathThreshold {
		*events = append(*events, t.event(EventRemove, touch))
	}
}

// deathMissedLimit returns the missed-frame count at or above which touch
// should be dropped: death_threshold for confirmed Touches, no grace at all
// (missed >= 1) for unconfirmed ones (spec.md §4.7, "no grace for flicker").
func deathMissedLimit(touch *Touch, params Params) int {
	if touch.Confirmed {
		return params.DeathThreshold
	}
	return 1
}

func (t *Tracker) birth(candidate l5screen.MappedCandidate, timestampNanos int64) {
	touch := &Touch{
		SessionID:       t.counter.Next(),
		ScreenID:        t.screenID,
		U:               candidate.U,
		V:               candidate.V,
		LastUpdateNanos: timestampNanos,
	}
	t.touches[touch.SessionID] = touch
}

func (t *Tracker) event(kind EventKind, touch *Touch) TouchEvent {
	return TouchEvent{
		Kind:           kind,
		SessionID:      touch.SessionID,
		ScreenID:       t.screenID,
		U:              touch.U,
		V:              touch.V,
		DU:             touch.DU,
		DV:             touch.DV,
		TimestampNanos: touch.LastUpdateNanos,
	}
}
