package l5screen

import (
	"math"
	"sort"

	"github.com/lumentouch/touchcore/internal/touch/l4cluster"
)

// ScreenRect is an axis-aligned-in-local-frame rectangle in the world frame:
// origin (X, Y), size (W, H), rotation Phi, a unique ID, and the set of
// sensor ids allowed to contribute candidates to it (spec.md §4.2).
type ScreenRect struct {
	ID             int
	X, Y           float64
	W, H           float64
	Phi            float64
	AllowedSensors map[string]struct{}
}

// AllowsSensor reports whether sensorID may contribute to this screen. A nil
// or empty AllowedSensors set allows no sensor, matching the conservative
// "must be explicitly configured" convention used for screen-sensor binding
// elsewhere in the config.
func (s ScreenRect) AllowsSensor(sensorID string) bool {
	_, ok := s.AllowedSensors[sensorID]
	return ok
}

// Diagonal returns the rectangle's diagonal length, used to derive
// default-relative thresholds (r_merge, r_gate) at the fusion and tracking
// layers.
func (s ScreenRect) Diagonal() float64 {
	return math.Hypot(s.W, s.H)
}

// MappedCandidate is a Candidate that has been placed on a screen and
// normalized into [0,1]² local coordinates (spec.md §4.2).
type MappedCandidate struct {
	ScreenID       int
	U, V           float64
	PointCount     int
	SensorID       string
	TimestampNanos int64
}

// SortByID returns a copy of screens ordered by ascending ID, so that
// scanning in order implements spec.md §4.5's "smallest id wins" tie-break
// regardless of configuration order.
func SortByID(screens []ScreenRect) []ScreenRect {
	sorted := make([]ScreenRect, len(screens))
	copy(sorted, screens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// Map tests candidate against every screen in screens (in the order given)
// and returns the MappedCandidate for the first screen whose local-frame
// bounds contain it and whose allowed-sensor set includes the candidate's
// sensor, plus true. If no screen matches it returns the zero value and
// false.
//
// Callers must pass screens already sorted by ID ascending (SortByID) so
// "first match" implements spec.md §4.5's "smallest id wins" tie-break.
func Map(candidate l4cluster.Candidate, screens []ScreenRect) (MappedCandidate, bool) {
	for _, screen := range screens {
		if !screen.AllowsSensor(candidate.SensorID) {
			continue
		}
		u, v, ok := localize(candidate.X, candidate.Y, screen)
		if !ok {
			continue
		}
		return MappedCandidate{
			ScreenID:       screen.ID,
			U:              u,
			V:              v,
			PointCount:     candidate.PointCount,
			SensorID:       candidate.SensorID,
			TimestampNanos: candidate.TimestampNanos,
		}, true
	}
	return MappedCandidate{}, false
}

// MapAll maps every candidate against screens (expected pre-sorted by
// SortByID), appending matches to dst and reusing its backing array across
// calls the same way l3geometry.ProjectScan does for projected points.
func MapAll(candidates []l4cluster.Candidate, screens []ScreenRect, dst []MappedCandidate) []MappedCandidate {
	dst = dst[:0]
	for _, c := range candidates {
		if mapped, ok := Map(c, screens); ok {
			dst = append(dst, mapped)
		}
	}
	return dst
}

// localize transforms a world-frame point into screen's local frame
// (translate by -origin, rotate by -phi per spec.md §4.5) and, if it falls
// within [0,w]x[0,h], returns its normalized [0,1]² coordinates.
func localize(x, y float64, screen ScreenRect) (u, v float64, ok bool) {
	dx, dy := x-screen.X, y-screen.Y

	sinP, cosP := math.Sin(-screen.Phi), math.Cos(-screen.Phi)
	lx := cosP*dx - sinP*dy
	ly := sinP*dx + cosP*dy

	if lx < 0 || lx > screen.W || ly < 0 || ly > screen.H {
		return 0, 0, false
	}

	if screen.W == 0 || screen.H == 0 {
		return 0, 0, false
	}

	return lx / screen.W, ly / screen.H, true
}
