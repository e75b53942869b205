package main

import (
	"math"
	"time"
)

// This file implements the reducer-style architecture building blocks:
//
//   - Events: inputs to the reducer (pointer gestures, time ticks, IPC requests)
//   - Broadcasts: notifications for external observers (websocket hub)
//   - Commands: side effects requested by the reducer (snapshot delivery)
//   - Reduce(): computes next state + outputs, without performing I/O
//
// The reducer must be pure: no I/O, no blocking, no reads of the wall clock.
// All wheel state lives in WheelState; the daemon loop executes Commands,
// fans out Broadcasts, and manages the tick subscription from WantsTicks.

// ReduceResult is the output of Reduce(): next state plus the outputs the
// daemon loop must act on.
type ReduceResult struct {
	State      *WheelState
	Commands   []Command
	Broadcasts []StateBroadcast

	// WantsTicks tells the daemon loop whether an animation is in flight.
	// A transition from true to false cancels the tick subscription; false
	// to true subscribes. Exactly one animation runs at a time, so a new
	// subscription always supersedes the previous one.
	WantsTicks bool
}

// Reduce is the pure state transition function for the wheel.
//
// External events must arrive wrapped in TimedEvent so the reducer never
// consults the wall clock. Unknown events are no-ops: there is no error
// channel by design, and abnormal inputs degrade to clamped values or
// ignored samples.
func Reduce(s *WheelState, e Event, cfg MotionConfig) ReduceResult {
	if s == nil {
		s = newWheelState(0)
	}

	var out ReduceResult

	switch ev := e.(type) {
	case Tick:
		reduceTick(s, ev.Now, cfg, &out)

	case TimedEvent:
		switch inner := ev.Event.(type) {
		case PointerDown:
			reducePointerDown(s, inner, ev.At, cfg, &out)
		case PointerMove:
			reducePointerMove(s, inner, ev.At, cfg, &out)
		case PointerUp:
			reducePointerUp(s, inner, ev.At, cfg, &out)
		case SelectWedge:
			reduceSelectWedge(s, inner.Index, ev.At, cfg, &out)
		case ReloadWheel:
			reduceReload(s, inner.WedgeCount, ev.At, &out)
		case SpinWheel:
			reduceSpin(s, inner.Velocity, ev.At, cfg, &out)
		case RequestStateSnapshot:
			out.Commands = append(out.Commands, CmdPublishSnapshot{
				Reply:    inner.Reply,
				Snapshot: s.snapshot(),
			})
		default:
			// Unknown wrapped event: no-op.
		}

	default:
		// Unknown event type: no-op.
	}

	out.State = s
	out.WantsTicks = s.wantsTicks()
	return out
}

// reduceTick advances whichever animation is in flight by one step.
// Each step is O(1) trigonometric work; the handler must return immediately
// because it runs on the host's per-frame cadence.
func reduceTick(s *WheelState, now time.Time, cfg MotionConfig, out *ReduceResult) {
	switch s.Status {
	case StatusDecelerating:
		s.Velocity *= cfg.DecayMultiplier
		rotate(s, -s.Velocity/cfg.TickHz, now, out)

		if s.Velocity <= cfg.SpeedToSnap && s.Velocity >= -cfg.SpeedToSnap {
			s.Velocity = 0
			beginSnapToNearest(s, now, cfg, out)
		}

	case StatusSnapping:
		remaining := normalizeShortest(s.Snap.Destination - s.Orientation)
		if remaining <= cfg.SnapProximity && remaining >= -cfg.SnapProximity {
			completeSnap(s, now, out)
			return
		}
		rotate(s, remaining/cfg.SnapDivisor, now, out)

	default:
		// Stale tick delivered after the subscription was canceled: no-op.
	}
}

// reducePointerDown begins tracking a drag. Samples inside the hub dead zone
// are ignored entirely (not tracked); an in-flight animation is finalized as
// if it had ended before tracking begins.
func reducePointerDown(s *WheelState, p PointerDown, at time.Time, cfg MotionConfig, out *ReduceResult) {
	if !s.Layout.active() {
		return
	}
	if math.Hypot(p.X, p.Y) < cfg.MinDistFromCenter {
		return
	}

	finalizeAnimation(s, at, out)

	s.Tracking = true
	s.Motion.reset()
	s.Motion.record(math.Atan2(p.Y, p.X), at)
	s.LastPointerAt = at
}

// reducePointerMove rotates the wheel by the angular delta between
// consecutive samples (drag follows the finger) and records the sample for
// velocity estimation on release.
func reducePointerMove(s *WheelState, p PointerMove, at time.Time, cfg MotionConfig, out *ReduceResult) {
	if !s.Tracking || !s.Layout.active() {
		return
	}
	if math.Hypot(p.X, p.Y) < cfg.MinDistFromCenter {
		return
	}

	angle := math.Atan2(p.Y, p.X)
	rotate(s, normalizeShortest(angle-s.Motion.currAngle), at, out)
	s.Motion.record(angle, at)
	s.LastPointerAt = at
}

// reducePointerUp ends the drag: measured velocity enters deceleration,
// a tap or sub-threshold gesture snaps straight to the nearest wedge.
func reducePointerUp(s *WheelState, p PointerUp, at time.Time, cfg MotionConfig, out *ReduceResult) {
	if !s.Tracking || !s.Layout.active() {
		return
	}

	if math.Hypot(p.X, p.Y) >= cfg.MinDistFromCenter {
		angle := math.Atan2(p.Y, p.X)
		rotate(s, normalizeShortest(angle-s.Motion.currAngle), at, out)
		s.Motion.record(angle, at)
	}

	s.Tracking = false

	v := s.Motion.velocity(cfg.MinSpinRadians, cfg.MaxVelocity)
	if p.TapCount > 0 {
		// A tap re-snaps to the nearest current wedge rather than the
		// tapped one.
		v = 0
	}
	s.Motion.reset()

	if v != 0 {
		s.Velocity = v
		setStatus(s, StatusDecelerating, at, out)
		return
	}
	beginSnapToNearest(s, at, cfg, out)
}

// reduceSelectWedge starts a programmatic snap to the given index. Selecting
// the wedge already centered on the reference angle is a no-op: no
// transition, no events. A snap or deceleration already in flight is
// superseded (canceled, not finalized).
func reduceSelectWedge(s *WheelState, index int, at time.Time, cfg MotionConfig, out *ReduceResult) {
	if !s.Layout.active() {
		return
	}

	index = floorMod(index, s.Layout.WedgeCount)
	dest := snapDestination(index, s.Layout.WedgeWidth, cfg.ReferenceAngle)

	if s.Status == StatusIdle && !s.Tracking {
		remaining := normalizeShortest(dest - s.Orientation)
		if remaining <= cfg.SnapProximity && remaining >= -cfg.SnapProximity {
			return
		}
	}

	s.Tracking = false
	s.Motion.reset()
	s.Velocity = 0
	s.Snap = SnapTarget{Destination: dest, Index: index}
	setStatus(s, StatusSnapping, at, out)
}

// reduceReload rebuilds the layout and returns the wheel to its rest pose.
// The tick subscription is invalidated through WantsTicks before any further
// event can touch the discarded gesture state.
func reduceReload(s *WheelState, wedgeCount int, at time.Time, out *ReduceResult) {
	s.resetToLayout(wedgeCount)
	out.Broadcasts = append(out.Broadcasts, BroadcastWheelReloaded{WedgeCount: wedgeCount, At: at})
	out.Broadcasts = append(out.Broadcasts, BroadcastStatusChanged{Status: s.Status, At: at})
}

// reduceSpin injects a synthetic flick at the given velocity (clamped).
// Zero velocity degrades to a re-snap, matching a tap.
func reduceSpin(s *WheelState, velocity float64, at time.Time, cfg MotionConfig, out *ReduceResult) {
	if !s.Layout.active() {
		return
	}

	finalizeAnimation(s, at, out)
	s.Tracking = false
	s.Motion.reset()

	if velocity > cfg.MaxVelocity {
		velocity = cfg.MaxVelocity
	}
	if velocity < -cfg.MaxVelocity {
		velocity = -cfg.MaxVelocity
	}

	if velocity == 0 {
		beginSnapToNearest(s, at, cfg, out)
		return
	}
	s.Velocity = velocity
	setStatus(s, StatusDecelerating, at, out)
}

// rotate applies a signed orientation delta and broadcasts it.
func rotate(s *WheelState, delta float64, at time.Time, out *ReduceResult) {
	s.Orientation += delta
	out.Broadcasts = append(out.Broadcasts, BroadcastRotationChanged{
		Delta:       delta,
		Orientation: s.Orientation,
		At:          at,
	})
}

// beginSnapToNearest computes the nearest-wedge target from the current
// orientation and enters the snapping phase.
func beginSnapToNearest(s *WheelState, at time.Time, cfg MotionConfig, out *ReduceResult) {
	index := nearestWedgeIndex(s.Orientation, s.Layout.WedgeWidth, s.Layout.WedgeCount, cfg.ReferenceAngle)
	s.Snap = SnapTarget{
		Destination: snapDestination(index, s.Layout.WedgeWidth, cfg.ReferenceAngle),
		Index:       index,
	}
	setStatus(s, StatusSnapping, at, out)
}

// completeSnap finishes the snapping phase: the wheel goes idle and the
// selection event fires exactly once with the target index.
func completeSnap(s *WheelState, at time.Time, out *ReduceResult) {
	s.SelectedIndex = s.Snap.Index
	s.Snap = SnapTarget{}
	setStatus(s, StatusIdle, at, out)
	out.Broadcasts = append(out.Broadcasts, BroadcastSelectionEnded{Index: s.SelectedIndex, At: at})
}

// finalizeAnimation ends an in-flight animation as if it had completed:
// deceleration simply stops, a snap jumps to its destination and fires its
// selection. Used when a new drag or synthetic spin interrupts.
func finalizeAnimation(s *WheelState, at time.Time, out *ReduceResult) {
	switch s.Status {
	case StatusDecelerating:
		s.Velocity = 0
		setStatus(s, StatusIdle, at, out)

	case StatusSnapping:
		remaining := normalizeShortest(s.Snap.Destination - s.Orientation)
		if remaining != 0 {
			rotate(s, remaining, at, out)
		}
		completeSnap(s, at, out)
	}
}

// setStatus records a phase transition and broadcasts it. No-op when the
// status is unchanged.
func setStatus(s *WheelState, status WheelStatus, at time.Time, out *ReduceResult) {
	if s.Status == status {
		return
	}
	s.Status = status
	out.Broadcasts = append(out.Broadcasts, BroadcastStatusChanged{Status: status, At: at})
}
