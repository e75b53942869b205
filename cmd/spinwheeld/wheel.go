package main

import (
	"math"
	"time"
)

// WheelStatus is the state machine's phase. Exactly one is active at a time.
type WheelStatus string

const (
	StatusIdle         WheelStatus = "idle"
	StatusDecelerating WheelStatus = "decelerating"
	StatusSnapping     WheelStatus = "snapping"
)

// WheelLayout is the immutable wedge geometry for one wheel configuration.
// It is recomputed only on reload.
type WheelLayout struct {
	WedgeCount int
	WedgeWidth float64 // 2π / WedgeCount
}

// newWheelLayout builds a layout for the given wedge count. Counts below
// minWedgeCount produce an inactive layout (no wheel is drawn and motion
// entry points no-op until a valid reload).
func newWheelLayout(wedgeCount int) WheelLayout {
	if wedgeCount < minWedgeCount {
		return WheelLayout{WedgeCount: wedgeCount}
	}
	return WheelLayout{
		WedgeCount: wedgeCount,
		WedgeWidth: 2 * math.Pi / float64(wedgeCount),
	}
}

// active reports whether this layout describes a drawable wheel.
func (l WheelLayout) active() bool {
	return l.WedgeCount >= minWedgeCount
}

// SnapTarget is computed once when snapping starts and consumed each tick.
type SnapTarget struct {
	Destination float64 // orientation that centers Index on the reference angle
	Index       int     // wedge index reported when the snap completes
}

// WheelState is the reducer-owned state container for one wheel.
//
// Orientation is unwrapped radians from the drawn rest pose. It is mutated
// only by the reducer, once per tick or once per drag-delta event; everything
// else reads it through snapshots or broadcasts.
type WheelState struct {
	Layout      WheelLayout
	Orientation float64
	Status      WheelStatus

	// Velocity lives only during decelerating (rad/s, signed).
	Velocity float64

	// Snap is valid only while Status == StatusSnapping.
	Snap SnapTarget

	// SelectedIndex is the last wedge that completed a snap onto the
	// reference angle. It survives reloads until the next selection.
	SelectedIndex int

	// Tracking is the idle sub-state while a drag is in progress.
	Tracking bool
	Motion   motionTracker

	// LastPointerAt guards against stale move/up events arriving after a
	// reload discarded the gesture.
	LastPointerAt time.Time
}

// newWheelState returns an idle wheel at the rest pose for the given layout.
func newWheelState(wedgeCount int) *WheelState {
	s := &WheelState{}
	s.resetToLayout(wedgeCount)
	return s
}

// resetToLayout is the reload primitive: rest pose, idle, gesture discarded.
// SelectedIndex is intentionally retained.
func (s *WheelState) resetToLayout(wedgeCount int) {
	s.Layout = newWheelLayout(wedgeCount)
	s.Orientation = 0
	s.Status = StatusIdle
	s.Velocity = 0
	s.Snap = SnapTarget{}
	s.Tracking = false
	s.Motion.reset()
}

// wantsTicks reports whether an animation is in flight. The daemon loop uses
// this to subscribe to (or cancel) the tick source; the wheel never ticks
// while idle.
func (s *WheelState) wantsTicks() bool {
	return s.Status == StatusDecelerating || s.Status == StatusSnapping
}

// StateSnapshot is a copy of the externally visible wheel state, safe to hand
// to other goroutines.
type StateSnapshot struct {
	WedgeCount    int         `json:"wedge_count"`
	Orientation   float64     `json:"orientation"`
	Status        WheelStatus `json:"status"`
	SelectedIndex int         `json:"selected_index"`
	Velocity      float64     `json:"velocity"`
}

// snapshot builds the externally visible view of the wheel.
func (s *WheelState) snapshot() StateSnapshot {
	return StateSnapshot{
		WedgeCount:    s.Layout.WedgeCount,
		Orientation:   s.Orientation,
		Status:        s.Status,
		SelectedIndex: s.SelectedIndex,
		Velocity:      s.Velocity,
	}
}
