package main

import (
	"testing"
)

// TestUnmarshalEvent_KnownTypes decodes one representative envelope per wire
// event.
func TestUnmarshalEvent_KnownTypes(t *testing.T) {
	cases := []struct {
		line  string
		check func(Event) bool
	}{
		{`{"type":"pointer_down","data":{"x":120,"y":-30}}`, func(e Event) bool {
			p, ok := e.(PointerDown)
			return ok && p.X == 120 && p.Y == -30
		}},
		{`{"type":"pointer_up","data":{"x":0,"y":90,"tap_count":1}}`, func(e Event) bool {
			p, ok := e.(PointerUp)
			return ok && p.TapCount == 1
		}},
		{`{"type":"select_wedge","data":{"index":7}}`, func(e Event) bool {
			s, ok := e.(SelectWedge)
			return ok && s.Index == 7
		}},
		{`{"type":"reload_wheel","data":{"wedge_count":12}}`, func(e Event) bool {
			r, ok := e.(ReloadWheel)
			return ok && r.WedgeCount == 12
		}},
		{`{"type":"spin_wheel","data":{"velocity":-4.5}}`, func(e Event) bool {
			s, ok := e.(SpinWheel)
			return ok && s.Velocity == -4.5
		}},
	}

	for _, c := range cases {
		ev, err := UnmarshalEvent([]byte(c.line))
		if err != nil {
			t.Errorf("UnmarshalEvent(%s): %v", c.line, err)
			continue
		}
		if !c.check(ev) {
			t.Errorf("UnmarshalEvent(%s) = %#v", c.line, ev)
		}
	}
}

// TestUnmarshalEvent_Unknown rejects unrecognized types
func TestUnmarshalEvent_Unknown(t *testing.T) {
	if _, err := UnmarshalEvent([]byte(`{"type":"warp_wheel","data":{}}`)); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
	if _, err := UnmarshalEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed envelope")
	}
}

// TestMarshalEvent_RoundTrip checks the wire encoder against the decoder for
// one event that carries a payload.
func TestMarshalEvent_RoundTrip(t *testing.T) {
	data, err := MarshalEvent(SelectWedge{Index: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ev, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sel, ok := ev.(SelectWedge)
	if !ok || sel.Index != 3 {
		t.Errorf("round trip produced %#v", ev)
	}

	// Internal events have no wire form.
	if _, err := MarshalEvent(RequestStateSnapshot{}); err == nil {
		t.Errorf("expected error marshaling an internal event")
	}
}
