package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// ws-listen connects to the spinwheeld state websocket and prints every
// envelope it receives. Useful for watching the wheel from a terminal while
// developing a renderer.

func main() {
	var (
		wsURL = flag.String("ws", "ws://127.0.0.1:3002/ws/state", "spinwheeld state websocket URL")
		raw   = flag.Bool("raw", false, "Print raw JSON frames instead of formatted output")
	)
	flag.Parse()

	// Parse websocket URL
	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	// Handle shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	// Connect to websocket
	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! (press Ctrl+C to exit)")

	// Mutex to protect concurrent writes to websocket
	var writeMu sync.Mutex

	// Set up pong handler for connection health
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// The server pings; answer with pongs is automatic, but keep our own ping
	// ticker so dead connections are noticed even if the server goes quiet.
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	go func() {
		for range pingTicker.C {
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				log.Printf("ping failed: %v", err)
				return
			}
		}
	}()

	// Message reading loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}

			if messageType != websocket.TextMessage {
				continue
			}

			if *raw {
				fmt.Printf("%s\n", string(message))
				continue
			}
			printEnvelope(message)
		}
	}()

	// Wait for shutdown signal or connection close
	select {
	case <-sigc:
		log.Printf("shutting down...")
		writeMu.Lock()
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		if err != nil {
			log.Printf("error closing connection: %v", err)
		}
	case <-done:
		log.Printf("connection closed")
	}
}

// envelope mirrors the daemon's wire format: {type, ts, data}.
type envelope struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// printEnvelope formats known envelope types and pretty-prints the rest.
func printEnvelope(message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		fmt.Printf("[TEXT] %s\n", string(message))
		return
	}

	switch env.Type {
	case "state_init":
		var snap struct {
			WedgeCount    int     `json:"wedge_count"`
			Orientation   float64 `json:"orientation"`
			Status        string  `json:"status"`
			SelectedIndex int     `json:"selected_index"`
			Velocity      float64 `json:"velocity"`
		}
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			break
		}
		fmt.Printf("[INIT] wedges=%d orientation=%.4f status=%s selected=%d velocity=%.3f\n",
			snap.WedgeCount, snap.Orientation, snap.Status, snap.SelectedIndex, snap.Velocity)
		return

	case "rotation_changed":
		var data struct {
			Delta       float64 `json:"delta"`
			Orientation float64 `json:"orientation"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			break
		}
		fmt.Printf("[ROTATE] orientation=%.4f delta=%+.4f\n", data.Orientation, data.Delta)
		return

	case "selection_ended":
		var data struct {
			Index int `json:"index"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			break
		}
		fmt.Printf("[SELECT] index=%d\n", data.Index)
		return

	case "status_changed":
		var data struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			break
		}
		fmt.Printf("[STATUS] %s\n", data.Status)
		return

	case "wheel_reloaded":
		var data struct {
			WedgeCount int `json:"wedge_count"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			break
		}
		fmt.Printf("[RELOAD] wedges=%d\n", data.WedgeCount)
		return
	}

	// Unknown or malformed payload: pretty-print the whole frame.
	var jsonData map[string]any
	if err := json.Unmarshal(message, &jsonData); err == nil {
		prettyJSON, _ := json.MarshalIndent(jsonData, "", "  ")
		fmt.Printf("[FRAME]\n%s\n\n", string(prettyJSON))
	} else {
		fmt.Printf("[TEXT] %s\n", string(message))
	}
}
