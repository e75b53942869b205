package main

import "time"

// ==============================
// State broadcasts
// ==============================
// Broadcasts are reducer-emitted notifications for external observers
// (the websocket hub fans them out to renderers). They are outputs only;
// the reducer never reacts to them.

// StateBroadcast is a marker interface for reducer-emitted notifications.
type StateBroadcast interface {
	broadcastMarker()
}

// BroadcastRotationChanged is emitted on every orientation mutation, whether
// user-driven or animated. Delta is the signed change applied; Orientation is
// the resulting unwrapped angle.
type BroadcastRotationChanged struct {
	Delta       float64
	Orientation float64
	At          time.Time
}

func (BroadcastRotationChanged) broadcastMarker() {}

// BroadcastSelectionEnded is emitted exactly once per completed snap with the
// final wedge index.
type BroadcastSelectionEnded struct {
	Index int
	At    time.Time
}

func (BroadcastSelectionEnded) broadcastMarker() {}

// BroadcastStatusChanged is emitted on every phase transition.
type BroadcastStatusChanged struct {
	Status WheelStatus
	At     time.Time
}

func (BroadcastStatusChanged) broadcastMarker() {}

// BroadcastWheelReloaded is emitted after a reload so renderers can rebuild
// their wedge geometry. WedgeCount below two means the wheel is inactive.
type BroadcastWheelReloaded struct {
	WedgeCount int
	At         time.Time
}

func (BroadcastWheelReloaded) broadcastMarker() {}
