package main

import "time"

// motionTracker estimates a release velocity from pointer angle samples.
//
// Only the last two samples matter: velocity is measured over the final
// segment of the gesture, which keeps the fling low-latency and responsive
// to the finger's speed at the moment of release rather than a gesture-wide
// average.
type motionTracker struct {
	prevAngle float64
	currAngle float64
	startedAt time.Time
	endedAt   time.Time
	samples   int
}

// record pushes a new angle sample. The previous current sample becomes the
// previous slot; older history is discarded.
func (m *motionTracker) record(angle float64, at time.Time) {
	if m.samples == 0 {
		m.prevAngle = angle
		m.currAngle = angle
		m.startedAt = at
		m.endedAt = at
		m.samples = 1
		return
	}
	m.prevAngle = m.currAngle
	m.startedAt = m.endedAt
	m.currAngle = angle
	m.endedAt = at
	m.samples++
}

// velocity returns the signed angular velocity over the last segment,
// clamped to ±maxVelocity.
//
// Two classes of gesture deliberately report zero:
//   - zero elapsed time (duplicate timestamps; avoids division by zero)
//   - arcs shorter than minSpin (jitter or a tap, not a fling)
//
// Sign convention: a drag that decreases the sample angle yields a positive
// velocity, and the deceleration phase keeps rotating in the decreasing-angle
// direction.
func (m *motionTracker) velocity(minSpin, maxVelocity float64) float64 {
	if m.samples < 2 {
		return 0
	}
	elapsed := m.endedAt.Sub(m.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	delta := m.prevAngle - m.currAngle
	if delta < minSpin && delta > -minSpin {
		return 0
	}
	v := delta / elapsed
	if v > maxVelocity {
		v = maxVelocity
	}
	if v < -maxVelocity {
		v = -maxVelocity
	}
	return v
}

// reset discards all samples.
func (m *motionTracker) reset() {
	*m = motionTracker{}
}
