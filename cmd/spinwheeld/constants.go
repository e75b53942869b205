package main

import "math"

// Linux input event types and codes (from <linux/input.h>)
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_ABS = 0x03

	BTN_TOUCH = 0x14a
	BTN_LEFT  = 0x110

	ABS_X = 0x00
	ABS_Y = 0x01
)

// Input event value constants
const (
	evValueRelease = 0
	evValuePress   = 1
)

// Wheel motion defaults
const (
	defaultTickHz = 60 // Animation tick frequency (Hz)

	// Velocity estimation
	defaultMaxVelocityRadPerS = 20.0 // Clamp for measured fling velocity (rad/s)
	defaultMinSpinRadians     = 0.1  // Gestures below this arc are taps, not flings (rad)

	// Deceleration
	defaultDecayMultiplier = 0.98 // Per-tick velocity multiplier; must stay < maxDecayMultiplier
	defaultSpeedToSnap     = 0.1  // Velocity at or below which deceleration hands off to snapping (rad/s)

	// A decay multiplier at or above this never converges in practical time
	// under floating-point rounding, so configuration rejects it outright.
	maxDecayMultiplier = 0.99

	// Snapping
	defaultSnapDivisor      = 10.0  // Exponential-approach divisor: step = remaining / divisor
	defaultSnapProximityRad = 0.001 // Remaining arc at or below which the snap completes (rad)

	// Pointer gating
	defaultMinDistFromCenter = 30.0 // Pointer samples closer to the hub than this are ignored (units)
)

// Wheel layout defaults
const (
	defaultWedgeCount = 8

	// The wedge centered on this angle is the selected one ("up").
	defaultReferenceAngle = math.Pi / 2

	// minWedgeCount is the smallest layout that draws a wheel at all.
	// Below it the wheel is inactive and every motion entry point no-ops.
	minWedgeCount = 2
)
