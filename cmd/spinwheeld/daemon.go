package main

import (
	"context"
	"log/slog"
	"time"
)

// ============================================================================
// Central Daemon Loop
// ============================================================================
//
// Design rules enforced here:
//   - The reducer performs no I/O and computes: next state + outputs.
//   - The daemon loop is the only place that executes side effects and the
//     only goroutine that touches WheelState (single-owner, no locks).
//   - Broadcasts are fanned out to the websocket hub via a buffered channel.
//   - The tick source is subscribed only while an animation is in flight and
//     canceled synchronously when the reducer reports idle, so no stale tick
//     can mutate a reloaded wheel.
//
// ============================================================================

// runDaemon is the main loop: it receives Events from input/IPC/WS sources,
// emits Tick events while animating, reduces everything through the pure
// reducer, and dispatches the resulting outputs.
//
// Shutdown semantics:
//   - Exits when ctx is canceled
//   - Exits cleanly when the events channel is closed
func runDaemon(
	ctx context.Context,
	events <-chan Event,
	state *WheelState,
	cfg MotionConfig,
	broadcasts chan<- StateBroadcast,
	logger *slog.Logger,
) {
	if state == nil {
		logger.Error("daemon state is nil")
		return
	}

	tickInterval := time.Second / time.Duration(cfg.TickHz)

	// The ticker is the tick subscription: nil while idle, live while an
	// animation runs. Exactly one animation is active at a time, so a fresh
	// subscription always supersedes the previous one.
	var ticker *time.Ticker
	var tickC <-chan time.Time
	var lastTick time.Time

	subscribe := func() {
		if ticker != nil {
			return
		}
		ticker = time.NewTicker(tickInterval)
		tickC = ticker.C
		lastTick = time.Now()
	}
	cancel := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		ticker = nil
		tickC = nil
	}
	defer cancel()

	publish := func(bs []StateBroadcast) {
		for _, b := range bs {
			select {
			case broadcasts <- b:
			default:
				// Hub channel full: drop rather than stall the tick handler.
				logger.Warn("broadcast queue full, dropping", "broadcast", b)
			}
		}
	}

	// reduce runs one event through the reducer and dispatches outputs,
	// including the tick subscription change.
	reduce := func(ev Event) {
		rr := Reduce(state, ev, cfg)
		if rr.State != nil {
			state = rr.State
		}

		publish(rr.Broadcasts)
		for _, cmd := range rr.Commands {
			runEffect(cmd, logger)
		}

		if rr.WantsTicks {
			subscribe()
		} else {
			cancel()
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping (context canceled)")
			return

		case ev, ok := <-events:
			if !ok {
				logger.Info("daemon stopping (events channel closed)")
				return
			}
			// Internal events arrive pre-wrapped; external payloads get the
			// receive timestamp here so the reducer stays clock-free.
			if _, wrapped := ev.(TimedEvent); !wrapped {
				ev = TimedEvent{Event: ev, At: time.Now()}
			}
			reduce(ev)

		case now := <-tickC:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			reduce(Tick{Now: now, Dt: dt})
		}
	}
}
