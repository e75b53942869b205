package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Events - inputs to the reducer
// ============================================================================
// Events represent intent from various sources (touch input, IPC, websocket
// clients, the tick source). The daemon loop consumes them and the reducer
// applies policy. Pointer events carry coordinates already relative to the
// wheel center; the reducer derives angle and hub distance from them.
// ============================================================================

// Event is the input to the reducer.
type Event interface {
	eventMarker()
}

// Tick is emitted by the daemon loop while an animation is in flight.
// Dt is the wall-clock delta in seconds between ticks; the motion constants
// are per-tick, so Dt is carried for diagnostics rather than integration.
type Tick struct {
	Now time.Time
	Dt  float64
}

func (Tick) eventMarker() {}

// TimedEvent wraps an external event with the daemon-assigned receive time.
type TimedEvent struct {
	Event Event
	At    time.Time
}

func (TimedEvent) eventMarker() {}

// PointerDown begins a drag. X/Y are in input units relative to the wheel
// center. Samples closer to the hub than the configured minimum distance are
// ignored entirely.
type PointerDown struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (PointerDown) eventMarker() {}

// PointerMove continues a drag.
type PointerMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (PointerMove) eventMarker() {}

// PointerUp ends a drag. TapCount > 0 marks the gesture as a tap regardless
// of measured movement.
type PointerUp struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	TapCount int     `json:"tap_count,omitempty"`
}

func (PointerUp) eventMarker() {}

// SelectWedge requests a programmatic snap to the given wedge index.
// Out-of-range indices are reduced modulo the wedge count.
type SelectWedge struct {
	Index int `json:"index"`
}

func (SelectWedge) eventMarker() {}

// ReloadWheel rebuilds the layout for a new wedge count and resets the wheel
// to its rest pose. Counts below two produce an inactive wheel.
type ReloadWheel struct {
	WedgeCount int `json:"wedge_count"`
}

func (ReloadWheel) eventMarker() {}

// SpinWheel is a synthetic flick: it enters deceleration directly with the
// given velocity (clamped), bypassing pointer tracking. Used by wheel-ctl and
// tests to exercise the full decelerate-then-snap cycle without hardware.
type SpinWheel struct {
	Velocity float64 `json:"velocity"`
}

func (SpinWheel) eventMarker() {}

// RequestStateSnapshot asks the reducer for a coherent copy of the wheel
// state. Internal only (websocket state_init); never on the IPC wire.
type RequestStateSnapshot struct {
	Reply chan StateSnapshot
}

func (RequestStateSnapshot) eventMarker() {}

// ============================================================================
// JSON envelope
// ============================================================================
// EventEnvelope wraps wire events with a type discriminator, since Go has no
// union types. Only externally-originated events are marshalable.
// ============================================================================

// EventEnvelope wraps an event for JSON transport.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalEvent deserializes a JSON envelope into a concrete Event.
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "pointer_down":
		var e PointerDown
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal PointerDown: %w", err)
		}
		return e, nil

	case "pointer_move":
		var e PointerMove
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal PointerMove: %w", err)
		}
		return e, nil

	case "pointer_up":
		var e PointerUp
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal PointerUp: %w", err)
		}
		return e, nil

	case "select_wedge":
		var e SelectWedge
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SelectWedge: %w", err)
		}
		return e, nil

	case "reload_wheel":
		var e ReloadWheel
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ReloadWheel: %w", err)
		}
		return e, nil

	case "spin_wheel":
		var e SpinWheel
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SpinWheel: %w", err)
		}
		return e, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// MarshalEvent serializes an Event into a JSON envelope.
func MarshalEvent(e Event) ([]byte, error) {
	var env EventEnvelope

	marshal := func(typ string, payload any) error {
		env.Type = typ
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		env.Data = data
		return nil
	}

	var err error
	switch e := e.(type) {
	case PointerDown:
		err = marshal("pointer_down", e)
	case PointerMove:
		err = marshal("pointer_move", e)
	case PointerUp:
		err = marshal("pointer_up", e)
	case SelectWedge:
		err = marshal("select_wedge", e)
	case ReloadWheel:
		err = marshal("reload_wheel", e)
	case SpinWheel:
		err = marshal("spin_wheel", e)
	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(env)
}
