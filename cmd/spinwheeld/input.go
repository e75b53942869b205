package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
)

// inputEvent represents a Linux input event structure
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// readInputEvents reads input events from a single device and sends them to a
// channel. This runs in a dedicated goroutine and blocks on read operations.
func readInputEvents(f *os.File, events chan<- inputEvent, readErr chan<- error) {
	evSize := binary.Size(inputEvent{})
	buf := make([]byte, evSize)
	reader := bytes.NewReader(buf) // Reusable reader, reset on each iteration

	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			readErr <- err
			return
		}

		reader.Reset(buf)
		var ev inputEvent
		if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
			// Skip malformed events
			continue
		}

		events <- ev
	}
}

// touchTracker accumulates evdev absolute-axis state and turns BTN_TOUCH
// press/move/release sequences into pointer events relative to the wheel
// center.
//
// evdev reports axes and the touch button as separate events within a sync
// frame, so the tracker holds the latest X/Y and emits on EV_SYN boundaries
// would be the strictly correct approach; in practice emitting on each axis
// change while touching tracks the finger closely enough for velocity
// estimation and matches the update cadence of the devices this targets.
type touchTracker struct {
	centerX float64
	centerY float64

	x, y     float64
	touching bool
}

// translate converts one raw input event into a pointer event for the wheel,
// or nil when the event carries no gesture meaning.
func (t *touchTracker) translate(ev inputEvent) Event {
	switch ev.Type {
	case EV_ABS:
		switch ev.Code {
		case ABS_X:
			t.x = float64(ev.Value) - t.centerX
		case ABS_Y:
			t.y = float64(ev.Value) - t.centerY
		default:
			return nil
		}
		if t.touching {
			return PointerMove{X: t.x, Y: t.y}
		}
		return nil

	case EV_KEY:
		if ev.Code != BTN_TOUCH && ev.Code != BTN_LEFT {
			return nil
		}
		switch ev.Value {
		case evValuePress:
			t.touching = true
			return PointerDown{X: t.x, Y: t.y}
		case evValueRelease:
			if !t.touching {
				return nil
			}
			t.touching = false
			return PointerUp{X: t.x, Y: t.y}
		}
	}
	return nil
}
