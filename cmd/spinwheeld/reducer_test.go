package main

import (
	"math"
	"testing"
	"time"
)

func testMotionConfig() MotionConfig {
	return MotionConfig{
		MaxVelocity:       defaultMaxVelocityRadPerS,
		MinSpinRadians:    defaultMinSpinRadians,
		DecayMultiplier:   defaultDecayMultiplier,
		SpeedToSnap:       defaultSpeedToSnap,
		SnapDivisor:       defaultSnapDivisor,
		SnapProximity:     defaultSnapProximityRad,
		ReferenceAngle:    defaultReferenceAngle,
		MinDistFromCenter: defaultMinDistFromCenter,
		TickHz:            defaultTickHz,
	}
}

func timed(e Event, at time.Time) TimedEvent {
	return TimedEvent{Event: e, At: at}
}

// runToIdle feeds ticks until the wheel stops wanting them, collecting every
// broadcast along the way. Fails the test if the wheel never settles.
func runToIdle(t *testing.T, s *WheelState, cfg MotionConfig, maxTicks int) []StateBroadcast {
	t.Helper()

	var all []StateBroadcast
	now := time.Now()
	tick := time.Second / time.Duration(cfg.TickHz)

	for i := 0; i < maxTicks; i++ {
		if !s.wantsTicks() {
			return all
		}
		now = now.Add(tick)
		rr := Reduce(s, Tick{Now: now, Dt: tick.Seconds()}, cfg)
		all = append(all, rr.Broadcasts...)
	}

	t.Fatalf("wheel did not settle within %d ticks (status=%s velocity=%v)", maxTicks, s.Status, s.Velocity)
	return nil
}

func selectionsIn(bs []StateBroadcast) []BroadcastSelectionEnded {
	var out []BroadcastSelectionEnded
	for _, b := range bs {
		if sel, ok := b.(BroadcastSelectionEnded); ok {
			out = append(out, sel)
		}
	}
	return out
}

// TestReduce_SpinDeceleratesAndSnaps runs a full flick cycle: deceleration,
// hand-off to snapping, and exactly one selection at the end.
func TestReduce_SpinDeceleratesAndSnaps(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	rr := Reduce(s, timed(SpinWheel{Velocity: 5.0}, now), cfg)
	if s.Status != StatusDecelerating {
		t.Fatalf("expected decelerating after spin, got %s", s.Status)
	}
	if !rr.WantsTicks {
		t.Fatalf("expected WantsTicks after spin")
	}

	all := runToIdle(t, s, cfg, 1000)

	sels := selectionsIn(all)
	if len(sels) != 1 {
		t.Fatalf("expected exactly 1 selection, got %d", len(sels))
	}
	if sels[0].Index < 0 || sels[0].Index >= 4 {
		t.Errorf("selection index %d out of range", sels[0].Index)
	}
	if sels[0].Index != s.SelectedIndex {
		t.Errorf("broadcast index %d != state index %d", sels[0].Index, s.SelectedIndex)
	}

	if s.Status != StatusIdle {
		t.Errorf("expected idle after settle, got %s", s.Status)
	}
	if s.Velocity != 0 {
		t.Errorf("expected zero velocity after settle, got %v", s.Velocity)
	}

	dest := snapDestination(s.SelectedIndex, s.Layout.WedgeWidth, cfg.ReferenceAngle)
	if rem := normalizeShortest(dest - s.Orientation); math.Abs(rem) > cfg.SnapProximity {
		t.Errorf("settled %v rad away from wedge center, want <= %v", rem, cfg.SnapProximity)
	}
}

// TestReduce_MaxVelocitySettles bounds termination from the worst case: even a
// maximum-speed fling must settle comfortably within a few hundred ticks.
func TestReduce_MaxVelocitySettles(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(8)
	Reduce(s, timed(SpinWheel{Velocity: cfg.MaxVelocity}, time.Now()), cfg)

	all := runToIdle(t, s, cfg, 400)
	if len(selectionsIn(all)) != 1 {
		t.Fatalf("expected exactly 1 selection, got %d", len(selectionsIn(all)))
	}
}

// TestReduce_DecelerationDecayOrder verifies the first tick's arithmetic:
// decay applies before the rotation step.
func TestReduce_DecelerationDecayOrder(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SpinWheel{Velocity: 5.0}, now), cfg)
	Reduce(s, Tick{Now: now.Add(time.Second / 60)}, cfg)

	wantV := 5.0 * cfg.DecayMultiplier
	if math.Abs(s.Velocity-wantV) > 1e-12 {
		t.Errorf("velocity after first tick = %v, want %v", s.Velocity, wantV)
	}
	wantO := -wantV / cfg.TickHz
	if math.Abs(s.Orientation-wantO) > 1e-12 {
		t.Errorf("orientation after first tick = %v, want %v", s.Orientation, wantO)
	}
}

// TestReduce_DecelerationMonotone tests that speed strictly decreases while
// decelerating
func TestReduce_DecelerationMonotone(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SpinWheel{Velocity: -8.0}, now), cfg)

	prev := math.Abs(s.Velocity)
	for i := 0; i < 500 && s.Status == StatusDecelerating; i++ {
		now = now.Add(time.Second / 60)
		Reduce(s, Tick{Now: now}, cfg)
		cur := math.Abs(s.Velocity)
		if s.Status == StatusDecelerating && cur >= prev {
			t.Fatalf("speed did not decrease at tick %d: %v -> %v", i, prev, cur)
		}
		prev = cur
	}
	if s.Status == StatusDecelerating {
		t.Fatalf("still decelerating after 500 ticks")
	}
}

// TestReduce_SnapConvergenceMonotone tests that the remaining arc shrinks
// every snapping tick
func TestReduce_SnapConvergenceMonotone(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SelectWedge{Index: 1}, now), cfg)
	if s.Status != StatusSnapping {
		t.Fatalf("expected snapping, got %s", s.Status)
	}

	prev := math.Abs(normalizeShortest(s.Snap.Destination - s.Orientation))
	for i := 0; i < 200 && s.Status == StatusSnapping; i++ {
		now = now.Add(time.Second / 60)
		Reduce(s, Tick{Now: now}, cfg)
		cur := math.Abs(normalizeShortest(s.Snap.Destination - s.Orientation))
		if s.Status == StatusSnapping && cur >= prev {
			t.Fatalf("remaining arc did not shrink at tick %d: %v -> %v", i, prev, cur)
		}
		prev = cur
	}
	if s.Status != StatusIdle {
		t.Fatalf("snap did not complete, status=%s", s.Status)
	}
}

// TestReduce_DragRotatesWheel tests that moves rotate by the sample delta
func TestReduce_DragRotatesWheel(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	t0 := time.Now()

	Reduce(s, timed(PointerDown{X: 100, Y: 0}, t0), cfg)
	if !s.Tracking {
		t.Fatalf("expected tracking after pointer down")
	}

	rr := Reduce(s, timed(PointerMove{X: 0, Y: 100}, t0.Add(50*time.Millisecond)), cfg)
	if math.Abs(s.Orientation-math.Pi/2) > 1e-9 {
		t.Errorf("orientation = %v, want π/2", s.Orientation)
	}

	var rot *BroadcastRotationChanged
	for _, b := range rr.Broadcasts {
		if r, ok := b.(BroadcastRotationChanged); ok {
			rot = &r
		}
	}
	if rot == nil {
		t.Fatalf("expected rotation broadcast on move")
	}
	if math.Abs(rot.Delta-math.Pi/2) > 1e-9 {
		t.Errorf("rotation delta = %v, want π/2", rot.Delta)
	}
}

// TestReduce_FlingAfterDrag tests that release velocity comes from the last
// drag segment
func TestReduce_FlingAfterDrag(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	t0 := time.Now()

	Reduce(s, timed(PointerDown{X: 100, Y: 0}, t0), cfg)
	Reduce(s, timed(PointerMove{X: 0, Y: 100}, t0.Add(100*time.Millisecond)), cfg)
	Reduce(s, timed(PointerUp{X: -100, Y: 0}, t0.Add(200*time.Millisecond)), cfg)

	if s.Status != StatusDecelerating {
		t.Fatalf("expected decelerating after fling, got %s", s.Status)
	}
	// Final segment: π/2 -> π over 100ms, angle increasing => negative velocity.
	want := -(math.Pi / 2) / 0.1
	if math.Abs(s.Velocity-want) > 1e-6 {
		t.Errorf("velocity = %v, want %v", s.Velocity, want)
	}
	if s.Tracking {
		t.Errorf("still tracking after release")
	}
}

// TestReduce_SubThresholdReleaseSnaps tests that a barely-moving release snaps
// instead of fling
func TestReduce_SubThresholdReleaseSnaps(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	t0 := time.Now()

	Reduce(s, timed(PointerDown{X: 100, Y: 0}, t0), cfg)
	Reduce(s, timed(PointerMove{X: 100, Y: 1}, t0.Add(50*time.Millisecond)), cfg)
	Reduce(s, timed(PointerUp{X: 100, Y: 2}, t0.Add(100*time.Millisecond)), cfg)

	if s.Status != StatusSnapping {
		t.Fatalf("expected snapping after sub-threshold release, got %s", s.Status)
	}
}

// TestReduce_TapResnaps tests that a tap snaps to the nearest wedge
func TestReduce_TapResnaps(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	t0 := time.Now()

	Reduce(s, timed(PointerDown{X: 100, Y: 0}, t0), cfg)
	Reduce(s, timed(PointerUp{X: 100, Y: 0, TapCount: 1}, t0.Add(50*time.Millisecond)), cfg)

	if s.Status != StatusSnapping {
		t.Fatalf("expected snapping after tap, got %s", s.Status)
	}
	// Rest pose sits exactly between wedges 1 and 2; the tie rounds up.
	if s.Snap.Index != 2 {
		t.Errorf("tap snap index = %d, want 2", s.Snap.Index)
	}

	all := runToIdle(t, s, cfg, 200)
	sels := selectionsIn(all)
	if len(sels) != 1 || sels[0].Index != 2 {
		t.Fatalf("expected one selection of index 2, got %+v", sels)
	}
}

// TestReduce_DeadZoneIgnored tests that pointer samples near the hub do
// nothing at all
func TestReduce_DeadZoneIgnored(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	t0 := time.Now()

	rr := Reduce(s, timed(PointerDown{X: 10, Y: 0}, t0), cfg)
	if s.Tracking {
		t.Fatalf("expected no tracking inside dead zone")
	}
	if len(rr.Broadcasts) != 0 {
		t.Errorf("expected no broadcasts, got %d", len(rr.Broadcasts))
	}

	rr = Reduce(s, timed(PointerMove{X: 0, Y: 100}, t0.Add(10*time.Millisecond)), cfg)
	if len(rr.Broadcasts) != 0 || s.Orientation != 0 {
		t.Errorf("move without tracking mutated the wheel")
	}
}

// TestReduce_MoveThroughDeadZoneKeepsTracking tests that a drag passing over
// the hub drops those samples but stays active
func TestReduce_MoveThroughDeadZoneKeepsTracking(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	t0 := time.Now()

	Reduce(s, timed(PointerDown{X: 100, Y: 0}, t0), cfg)
	rr := Reduce(s, timed(PointerMove{X: 5, Y: 5}, t0.Add(20*time.Millisecond)), cfg)
	if len(rr.Broadcasts) != 0 {
		t.Errorf("dead-zone move produced broadcasts")
	}
	if !s.Tracking {
		t.Fatalf("tracking dropped by dead-zone move")
	}

	Reduce(s, timed(PointerMove{X: 0, Y: 100}, t0.Add(40*time.Millisecond)), cfg)
	if math.Abs(s.Orientation-math.Pi/2) > 1e-9 {
		t.Errorf("orientation = %v after re-emerging, want π/2", s.Orientation)
	}
}

// TestReduce_SelectWedge tests a programmatic snap and its idempotence
func TestReduce_SelectWedge(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SelectWedge{Index: 1}, now), cfg)
	if s.Status != StatusSnapping || s.Snap.Index != 1 {
		t.Fatalf("expected snapping to 1, got status=%s index=%d", s.Status, s.Snap.Index)
	}

	all := runToIdle(t, s, cfg, 200)
	sels := selectionsIn(all)
	if len(sels) != 1 || sels[0].Index != 1 {
		t.Fatalf("expected one selection of index 1, got %+v", sels)
	}

	// Selecting the already-centered wedge is a complete no-op.
	rr := Reduce(s, timed(SelectWedge{Index: 1}, now.Add(time.Second)), cfg)
	if s.Status != StatusIdle {
		t.Errorf("re-select changed status to %s", s.Status)
	}
	if len(rr.Broadcasts) != 0 {
		t.Errorf("re-select produced %d broadcasts", len(rr.Broadcasts))
	}
	if rr.WantsTicks {
		t.Errorf("re-select requested ticks")
	}
}

// TestReduce_SelectWedgeOutOfRange tests modular index reduction
func TestReduce_SelectWedgeOutOfRange(t *testing.T) {
	cfg := testMotionConfig()
	now := time.Now()

	s := newWheelState(4)
	Reduce(s, timed(SelectWedge{Index: 5}, now), cfg)
	if s.Snap.Index != 1 {
		t.Errorf("select 5 of 4: snap index = %d, want 1", s.Snap.Index)
	}

	s = newWheelState(4)
	Reduce(s, timed(SelectWedge{Index: -1}, now), cfg)
	if s.Snap.Index != 3 {
		t.Errorf("select -1 of 4: snap index = %d, want 3", s.Snap.Index)
	}
}

// TestReduce_SelectWedgeSupersedes tests that a new selection replaces an
// in-flight snap without finalizing it
func TestReduce_SelectWedgeSupersedes(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SelectWedge{Index: 1}, now), cfg)
	rr := Reduce(s, timed(SelectWedge{Index: 2}, now.Add(10*time.Millisecond)), cfg)

	if s.Snap.Index != 2 {
		t.Fatalf("snap target = %d, want 2", s.Snap.Index)
	}
	if len(selectionsIn(rr.Broadcasts)) != 0 {
		t.Fatalf("superseding a snap emitted a selection")
	}

	all := runToIdle(t, s, cfg, 200)
	sels := selectionsIn(all)
	if len(sels) != 1 || sels[0].Index != 2 {
		t.Fatalf("expected one selection of index 2, got %+v", sels)
	}
}

// TestReduce_PointerDownFinalizesSnap tests that grabbing a snapping wheel
// completes the snap first
func TestReduce_PointerDownFinalizesSnap(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SelectWedge{Index: 1}, now), cfg)
	dest := s.Snap.Destination

	rr := Reduce(s, timed(PointerDown{X: 100, Y: 0}, now.Add(10*time.Millisecond)), cfg)

	if math.Abs(normalizeShortest(dest-s.Orientation)) > 1e-9 {
		t.Errorf("orientation %v did not jump to destination %v", s.Orientation, dest)
	}
	sels := selectionsIn(rr.Broadcasts)
	if len(sels) != 1 || sels[0].Index != 1 {
		t.Fatalf("expected finalized selection of index 1, got %+v", sels)
	}
	if !s.Tracking || s.Status != StatusIdle {
		t.Errorf("expected idle+tracking after grab, got status=%s tracking=%v", s.Status, s.Tracking)
	}
	if rr.WantsTicks {
		t.Errorf("tick subscription kept alive after grab")
	}
}

// TestReduce_PointerDownStopsDeceleration tests that grabbing a decelerating
// wheel just stops it (no selection fires)
func TestReduce_PointerDownStopsDeceleration(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SpinWheel{Velocity: 5.0}, now), cfg)
	rr := Reduce(s, timed(PointerDown{X: 100, Y: 0}, now.Add(10*time.Millisecond)), cfg)

	if s.Velocity != 0 || s.Status != StatusIdle {
		t.Errorf("expected stopped wheel, got status=%s velocity=%v", s.Status, s.Velocity)
	}
	if len(selectionsIn(rr.Broadcasts)) != 0 {
		t.Errorf("stopping a deceleration emitted a selection")
	}
}

// TestReduce_ReloadResetsPose tests reload semantics
func TestReduce_ReloadResetsPose(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	// Establish a selection first, then disturb the wheel.
	Reduce(s, timed(SelectWedge{Index: 1}, now), cfg)
	runToIdle(t, s, cfg, 200)

	Reduce(s, timed(SpinWheel{Velocity: 5.0}, now.Add(time.Second)), cfg)
	Reduce(s, Tick{Now: now.Add(time.Second + time.Second/60)}, cfg)

	rr := Reduce(s, timed(ReloadWheel{WedgeCount: 6}, now.Add(2*time.Second)), cfg)

	if s.Status != StatusIdle || s.Orientation != 0 || s.Velocity != 0 {
		t.Errorf("reload left status=%s orientation=%v velocity=%v", s.Status, s.Orientation, s.Velocity)
	}
	if s.Layout.WedgeCount != 6 {
		t.Errorf("wedge count = %d, want 6", s.Layout.WedgeCount)
	}
	if math.Abs(s.Layout.WedgeWidth-2*math.Pi/6) > 1e-12 {
		t.Errorf("wedge width = %v, want 2π/6", s.Layout.WedgeWidth)
	}
	if s.SelectedIndex != 1 {
		t.Errorf("reload dropped SelectedIndex: got %d, want 1", s.SelectedIndex)
	}
	if rr.WantsTicks {
		t.Errorf("reload kept the tick subscription")
	}

	var reloaded bool
	for _, b := range rr.Broadcasts {
		if r, ok := b.(BroadcastWheelReloaded); ok {
			reloaded = true
			if r.WedgeCount != 6 {
				t.Errorf("reload broadcast count = %d, want 6", r.WedgeCount)
			}
		}
	}
	if !reloaded {
		t.Errorf("no wheel_reloaded broadcast")
	}
}

// TestReduce_InactiveWheelNoOps tests that a wheel with fewer than two wedges
// ignores all motion
func TestReduce_InactiveWheelNoOps(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(1)
	now := time.Now()

	for _, ev := range []Event{
		SpinWheel{Velocity: 5.0},
		PointerDown{X: 100, Y: 0},
		PointerMove{X: 0, Y: 100},
		PointerUp{X: 0, Y: 100},
		SelectWedge{Index: 0},
	} {
		rr := Reduce(s, timed(ev, now), cfg)
		if len(rr.Broadcasts) != 0 || rr.WantsTicks {
			t.Errorf("%T on inactive wheel produced output", ev)
		}
		if s.Status != StatusIdle || s.Orientation != 0 {
			t.Fatalf("%T mutated inactive wheel: status=%s orientation=%v", ev, s.Status, s.Orientation)
		}
	}

	// A valid reload brings it back to life.
	Reduce(s, timed(ReloadWheel{WedgeCount: 4}, now), cfg)
	Reduce(s, timed(SpinWheel{Velocity: 2.0}, now), cfg)
	if s.Status != StatusDecelerating {
		t.Errorf("wheel still inactive after valid reload")
	}
}

// TestReduce_SpinClampsVelocity tests that synthetic flicks respect the cap
func TestReduce_SpinClampsVelocity(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	now := time.Now()

	Reduce(s, timed(SpinWheel{Velocity: 100.0}, now), cfg)
	if s.Velocity != cfg.MaxVelocity {
		t.Errorf("velocity = %v, want clamp %v", s.Velocity, cfg.MaxVelocity)
	}

	s = newWheelState(4)
	Reduce(s, timed(SpinWheel{Velocity: -100.0}, now), cfg)
	if s.Velocity != -cfg.MaxVelocity {
		t.Errorf("velocity = %v, want clamp %v", s.Velocity, -cfg.MaxVelocity)
	}
}

// TestReduce_ZeroSpinSnaps tests that a zero-velocity spin degrades to a
// re-snap
func TestReduce_ZeroSpinSnaps(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)

	Reduce(s, timed(SpinWheel{Velocity: 0}, time.Now()), cfg)
	if s.Status != StatusSnapping {
		t.Errorf("expected snapping after zero spin, got %s", s.Status)
	}
}

// TestReduce_SnapshotCommand tests the snapshot round trip through the
// reducer and effect layer
func TestReduce_SnapshotCommand(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)
	s.SelectedIndex = 3

	reply := make(chan StateSnapshot, 1)
	rr := Reduce(s, timed(RequestStateSnapshot{Reply: reply}, time.Now()), cfg)

	if len(rr.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(rr.Commands))
	}
	cmd, ok := rr.Commands[0].(CmdPublishSnapshot)
	if !ok {
		t.Fatalf("expected CmdPublishSnapshot, got %T", rr.Commands[0])
	}

	runEffect(cmd, testLogger())

	select {
	case snap := <-reply:
		if snap.WedgeCount != 4 || snap.SelectedIndex != 3 || snap.Status != StatusIdle {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	default:
		t.Fatalf("snapshot was not delivered")
	}
}

// TestReduce_StaleTickIgnored tests that a tick on an idle wheel is a no-op
func TestReduce_StaleTickIgnored(t *testing.T) {
	cfg := testMotionConfig()
	s := newWheelState(4)

	rr := Reduce(s, Tick{Now: time.Now()}, cfg)
	if len(rr.Broadcasts) != 0 || rr.WantsTicks {
		t.Errorf("stale tick produced output")
	}
	if s.Orientation != 0 || s.Status != StatusIdle {
		t.Errorf("stale tick mutated state")
	}
}

// TestReduce_NilState tests that a nil state does not panic
func TestReduce_NilState(t *testing.T) {
	rr := Reduce(nil, Tick{Now: time.Now()}, testMotionConfig())
	if rr.State == nil {
		t.Fatalf("expected a usable state")
	}
}
