package main

import "math"

// Pure angle helpers for the wheel state machine.
//
// Orientation is kept unwrapped (it may drift past ±2π after long spins), so
// every comparison against a destination goes through normalizeShortest to
// stay continuous across the ±π wrap.

// normalizeShortest returns the signed shortest-path equivalent of delta,
// in (-π, π].
func normalizeShortest(delta float64) float64 {
	return math.Atan2(math.Sin(delta), math.Cos(delta))
}

// nearestWedgeIndex returns the index of the wedge whose center is nearest
// the reference angle for the given orientation, always in [0, wedgeCount).
//
// math.Round rounds half away from zero, which is the tie-break we want:
// when a wedge boundary sits exactly under the reference marker, ties round
// outward symmetrically rather than to the even index.
func nearestWedgeIndex(orientation, wedgeWidth float64, wedgeCount int, referenceAngle float64) int {
	if wedgeCount < minWedgeCount || wedgeWidth <= 0 {
		return 0
	}
	idx := int(math.Round((orientation + wedgeWidth/2 + referenceAngle) / wedgeWidth))
	return floorMod(idx, wedgeCount)
}

// snapDestination returns the orientation that centers wedge index on the
// reference angle.
func snapDestination(index int, wedgeWidth, referenceAngle float64) float64 {
	return -referenceAngle + float64(index)*wedgeWidth - wedgeWidth/2
}

// floorMod reduces v into [0, m). Go's % follows the sign of the dividend,
// so a plain remainder can be negative here.
func floorMod(v, m int) int {
	r := v % m
	if r < 0 {
		r += m
	}
	return r
}
