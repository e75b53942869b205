package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
)

// ============================================================================
// wheel-ctl - Command-line IPC Client
// ============================================================================
// This tool sends control events to the spinwheeld daemon via IPC.
//
// Usage:
//   wheel-ctl select 3
//   wheel-ctl reload 12
//   wheel-ctl spin 5.0
//   wheel-ctl tap
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/spinwheeld.sock)
// ============================================================================

// Wire events (duplicated from the daemon package for a standalone binary)

type SelectWedge struct {
	Index int `json:"index"`
}

type ReloadWheel struct {
	WedgeCount int `json:"wedge_count"`
}

type SpinWheel struct {
	Velocity float64 `json:"velocity"`
}

type PointerUp struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	TapCount int     `json:"tap_count,omitempty"`
}

// EventEnvelope wraps events for JSON
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IPCResponse represents the daemon's response
type IPCResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func main() {
	socketPath := "/tmp/spinwheeld.sock"

	// Parse arguments
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Check for -socket flag
	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Parse command
	var eventType string
	var payload any

	switch args[0] {
	case "select", "select-wedge":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: select requires a wedge index\n")
			os.Exit(1)
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid wedge index: %v\n", err)
			os.Exit(1)
		}
		eventType = "select_wedge"
		payload = SelectWedge{Index: index}

	case "reload", "reload-wheel":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: reload requires a wedge count\n")
			os.Exit(1)
		}
		count, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid wedge count: %v\n", err)
			os.Exit(1)
		}
		eventType = "reload_wheel"
		payload = ReloadWheel{WedgeCount: count}

	case "spin":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: spin requires a velocity in rad/s\n")
			os.Exit(1)
		}
		velocity, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid velocity: %v\n", err)
			os.Exit(1)
		}
		eventType = "spin_wheel"
		payload = SpinWheel{Velocity: velocity}

	case "tap":
		// Zero-velocity spin: re-snaps the wheel to the nearest wedge.
		eventType = "spin_wheel"
		payload = SpinWheel{Velocity: 0}

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	// Send event
	if err := sendEvent(socketPath, eventType, payload); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

func sendEvent(socketPath, eventType string, payload any) error {
	// Connect to socket
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	// Marshal event envelope
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	env := EventEnvelope{Type: eventType, Data: data}
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	// Send event (line-delimited JSON)
	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	// Read response
	var response IPCResponse
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	// Check response status
	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}

	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `wheel-ctl - Control spinwheeld daemon via IPC

Usage:
  wheel-ctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/spinwheeld.sock)

Commands:
  select <index>       Snap the wheel to the given wedge index
  reload <count>       Rebuild the wheel with the given number of wedges
  spin <velocity>      Fling the wheel at the given velocity in rad/s
  tap                  Re-snap the wheel to the nearest wedge
  help, -h, --help     Show this help message

Examples:
  wheel-ctl select 3
  wheel-ctl reload 12
  wheel-ctl spin -5.0
  wheel-ctl -socket /var/run/spinwheeld.sock tap
`)
}
