package l7track

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumentouch/touchcore/internal/touch/l5screen"
)

func mc(u, v float64) l5screen.MappedCandidate {
	return l5screen.MappedCandidate{ScreenID: 0, U: u, V: v, PointCount: 4}
}

func newTestTracker() *Tracker {
	return NewTracker(0, DefaultParams(), NewSessionCounter())
}

func frameNanos(n int) int64 { return int64(n) * 25_000_000 } // ~40 Hz cadence

func TestTracker_BirthIsSilentUntilConfirmed(t *testing.T) {
	tr := newTestTracker()
	events := tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(0))
	require.Empty(t, events)
	require.Len(t, tr.Touches(), 1)
	require.False(t, tr.Touches()[0].Confirmed)
}

func TestTracker_ConfirmsAfterBirthGraceAndEmitsAdd(t *testing.T) {
	tr := newTestTracker() // BirthGrace=2
	tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(0))
	events := tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(1))
	require.Empty(t, events) // age=1, still < BirthGrace(2)

	events = tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(2))
	require.Len(t, events, 1)
	require.Equal(t, EventAdd, events[0].Kind)

	events = tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(3))
	require.Len(t, events, 1)
	require.Equal(t, EventUpdate, events[0].Kind)
}

func TestTracker_UnconfirmedTouchDiesOnFirstMiss(t *testing.T) {
	tr := newTestTracker()
	tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(0))
	require.Len(t, tr.Touches(), 1)

	events := tr.Update(nil, frameNanos(1))
	require.Empty(t, events) // unconfirmed touches are silent, even in death
	require.Empty(t, tr.Touches())
}

func TestTracker_ConfirmedTouchSurvivesUpToDeathThreshold(t *testing.T) {
	tr := newTestTracker() // DeathThreshold=3
	for i := 0; i < 3; i++ {
		tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(i))
	}
	require.True(t, tr.Touches()[0].Confirmed)

	for i := 3; i < 5; i++ {
		events := tr.Update(nil, frameNanos(i))
		require.Empty(t, events)
		require.Len(t, tr.Touches(), 1) // still coasting, missed < 3
	}

	events := tr.Update(nil, frameNanos(5))
	require.Len(t, events, 1)
	require.Equal(t, EventRemove, events[0].Kind)
	require.Empty(t, tr.Touches())
}

func TestTracker_MatchedTouchResetsMissedCounter(t *testing.T) {
	tr := newTestTracker()
	for i := 0; i < 3; i++ {
		tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(i))
	}
	tr.Update(nil, frameNanos(3))
	tr.Update(nil, frameNanos(4))
	require.Equal(t, 2, tr.Touches()[0].Missed)

	tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(5))
	require.Equal(t, 0, tr.Touches()[0].Missed)
}

func TestTracker_SessionIDsAreStableAcrossFrames(t *testing.T) {
	tr := newTestTracker()
	tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(0))
	first := tr.Touches()[0].SessionID

	tr.Update([]l5screen.MappedCandidate{mc(0.501, 0.5)}, frameNanos(1))
	tr.Update([]l5screen.MappedCandidate{mc(0.502, 0.5)}, frameNanos(2))
	require.Equal(t, first, tr.Touches()[0].SessionID)
}

func TestTracker_DistantCandidateOutsideGateBirthsSeparateTouch(t *testing.T) {
	tr := newTestTracker() // RGate=0.08
	for i := 0; i < 2; i++ {
		tr.Update([]l5screen.MappedCandidate{mc(0.1, 0.1)}, frameNanos(i))
	}
	require.Len(t, tr.Touches(), 1)

	// Far beyond the gate: must birth a second touch, not steal the first.
	tr.Update([]l5screen.MappedCandidate{mc(0.1, 0.1), mc(0.9, 0.9)}, frameNanos(2))
	require.Len(t, tr.Touches(), 2)
}

func TestTracker_TwoSessionsSharedCounterAreGloballyUnique(t *testing.T) {
	counter := NewSessionCounter()
	trA := NewTracker(0, DefaultParams(), counter)
	trB := NewTracker(1, DefaultParams(), counter)

	trA.Update([]l5screen.MappedCandidate{mc(0.1, 0.1)}, frameNanos(0))
	trB.Update([]l5screen.MappedCandidate{mc(0.1, 0.1)}, frameNanos(0))

	require.NotEqual(t, trA.Touches()[0].SessionID, trB.Touches()[0].SessionID)
}

func TestTracker_EventSequencePerSessionNeverRepeatsAdd(t *testing.T) {
	tr := newTestTracker()
	seenAdd := make(map[uint32]bool)
	seenRemove := make(map[uint32]bool)

	for i := 0; i < 6; i++ {
		events := tr.Update([]l5screen.MappedCandidate{mc(0.5, 0.5)}, frameNanos(i))
		for _, e := range events {
			if e.Kind == EventAdd {
				require.False(t, seenAdd[e.SessionID], "duplicate ADD for session %d", e.SessionID)
				require.False(t, seenRemove[e.SessionID], "ADD after REMOVE for session %d", e.SessionID)
				seenAdd[e.SessionID] = true
			}
			if e.Kind == EventUpdate {
				require.True(t, seenAdd[e.SessionID], "UPDATE before ADD for session %d", e.SessionID)
				require.False(t, seenRemove[e.SessionID])
			}
			if e.Kind == EventRemove {
				require.True(t, seenAdd[e.SessionID])
				seenRemove[e.SessionID] = true
			}
		}
	}
}

func TestSessionCounter_MonotonicAndSharable(t *testing.T) {
	c := NewSessionCounter()
	a, b := c.Next(), c.Next()
	require.Equal(t, uint32(1), a)
	require.Equal(t, uint32(2), b)
}
