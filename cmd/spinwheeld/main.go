package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("spinwheeld v%s\n", version)
	fmt.Println("Rotating wheel selector daemon")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  spinwheeld [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that drives an interactive rotating wheel selector. Touch")
	fmt.Println("  drags (via Linux input devices) spin the wheel; on release it")
	fmt.Println("  decelerates exponentially and snaps to the nearest wedge. State")
	fmt.Println("  changes are published to renderers over WebSocket, and a Unix")
	fmt.Println("  socket accepts control events (select, reload, spin).")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        YAML config file path (flags override file values)")
	fmt.Println()
	fmt.Println("  -wedges int")
	fmt.Printf("        Number of wheel wedges (default %d; below %d the wheel is inactive)\n", defaultWedgeCount, minWedgeCount)
	fmt.Println()
	fmt.Println("  -input-device string")
	fmt.Println("        Linux input event device for touch (e.g. /dev/input/event4)")
	fmt.Println("        May be omitted: IPC and websocket clients can drive the wheel")
	fmt.Println()
	fmt.Println("  -center-x float")
	fmt.Println("  -center-y float")
	fmt.Println("        Wheel center in input device coordinates")
	fmt.Println()
	fmt.Println("  -decay float")
	fmt.Printf("        Per-tick velocity decay multiplier (default %v, must be < %v)\n", defaultDecayMultiplier, maxDecayMultiplier)
	fmt.Println()
	fmt.Println("  -tick-hz int")
	fmt.Printf("        Animation tick rate in Hz (default %d)\n", defaultTickHz)
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Println("        Unix domain socket path for IPC (default \"/tmp/spinwheeld.sock\")")
	fmt.Println()
	fmt.Println("  -state-ws-addr string")
	fmt.Println("        State websocket listen address (default \"127.0.0.1:3002\")")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start with defaults (IPC-driven, 8 wedges)")
	fmt.Println("  spinwheeld")
	fmt.Println()
	fmt.Println("  # Touch screen at /dev/input/event4, wheel centered at (400, 400)")
	fmt.Println("  spinwheeld -input-device /dev/input/event4 -center-x 400 -center-y 400")
	fmt.Println()
	fmt.Println("  # Config file with flag override")
	fmt.Println("  spinwheeld -config /etc/spinwheeld.yaml -wedges 12")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires read access to input devices (run as root or add user to 'input' group)")
	fmt.Println("  - Renderers connect to ws://ADDR/ws/state and receive state_init on connect")
	fmt.Println("  - Use wheel-ctl to send control events over the IPC socket")
	fmt.Println()
}

func main() {
	// Check for version/help flags early
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	// Parse command-line flags
	var (
		configPath  = flag.String("config", "", "YAML config file path")
		wedges      = flag.Int("wedges", defaultWedgeCount, "Number of wheel wedges")
		inputDevice = flag.String("input-device", "", "Linux input event device for touch")
		centerX     = flag.Float64("center-x", 0, "Wheel center X in input device coordinates")
		centerY     = flag.Float64("center-y", 0, "Wheel center Y in input device coordinates")
		decay       = flag.Float64("decay", defaultDecayMultiplier, "Per-tick velocity decay multiplier")
		tickHz      = flag.Int("tick-hz", defaultTickHz, "Animation tick rate in Hz")
		ipcSocket   = flag.String("ipc-socket", "", "Unix domain socket path for IPC")
		stateWSAddr = flag.String("state-ws-addr", "", "State websocket listen address")
		logLevelStr = flag.String("log-level", "", "Log level: error, warn, info, debug")
		showVersion = flag.Bool("version", false, "Print version and exit")
		showHelp    = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	// Load config file if given; otherwise start from defaults.
	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	// Only flags the user actually set override the file config.
	var overrides FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "wedges":
			overrides.WedgeCount = wedges
		case "input-device":
			overrides.InputDevice = inputDevice
		case "center-x":
			overrides.CenterX = centerX
		case "center-y":
			overrides.CenterY = centerY
		case "decay":
			overrides.DecayMultiplier = decay
		case "tick-hz":
			overrides.TickHz = tickHz
		case "ipc-socket":
			overrides.IPCSocketPath = ipcSocket
		case "state-ws-addr":
			overrides.StateWSAddr = stateWSAddr
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := setupLogger(logLevel)

	// Open input devices before spawning anything so a bad path fails fast.
	var deviceFiles []*os.File
	for _, dev := range cfg.Input.Devices {
		f, err := os.Open(ExpandPath(dev))
		if err != nil {
			logger.Error("failed to open input device", "device", dev, "error", err, "tip", "run as root or add user to 'input' group")
			os.Exit(1)
		}
		deviceFiles = append(deviceFiles, f)
	}
	defer func() {
		for _, f := range deviceFiles {
			f.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Central channels: every source feeds events, the daemon loop feeds
	// broadcasts, the ws broadcaster fans out.
	events := make(chan Event, 64)
	broadcasts := make(chan StateBroadcast, 256)

	state := newWheelState(cfg.Wheel.WedgeCount)
	motionCfg := cfg.ToMotionConfig()

	wsServer := NewServer(logger, events, ServerConfig{})
	mux := http.NewServeMux()
	wsServer.Register(mux, cfg.StateWS.Path)
	httpSrv := &http.Server{Addr: cfg.StateWS.Addr, Handler: mux}

	logger.Debug("configuration",
		"wedges", cfg.Wheel.WedgeCount,
		"reference_angle_rad", motionCfg.ReferenceAngle,
		"input_devices", cfg.Input.Devices,
		"center_x", cfg.Input.CenterX,
		"center_y", cfg.Input.CenterY,
		"decay_multiplier", motionCfg.DecayMultiplier,
		"tick_hz", motionCfg.TickHz,
		"ipc_socket", cfg.IPC.SocketPath,
		"state_ws_addr", cfg.StateWS.Addr,
		"state_ws_path", cfg.StateWS.Path)

	g, gctx := errgroup.WithContext(ctx)

	// Daemon brain: single owner of WheelState.
	g.Go(func() error {
		runDaemon(gctx, events, state, motionCfg, broadcasts, logger)
		return nil
	})

	// WebSocket hub + broadcaster.
	g.Go(func() error {
		wsServer.Hub().Run(gctx)
		return nil
	})
	g.Go(func() error {
		RunBroadcaster(gctx, wsServer.Hub(), broadcasts, logger)
		return nil
	})

	// IPC server.
	g.Go(func() error {
		return runIPCServer(gctx, cfg.IPC.SocketPath, events, logger)
	})

	// HTTP server for the state websocket, with graceful shutdown.
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("state ws server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutCtx)
	})

	// Touch input: raw evdev events are translated into pointer events
	// relative to the configured wheel center.
	if len(deviceFiles) > 0 {
		rawEvents := make(chan inputEvent, 256)
		readErr := make(chan error, 1)
		startInputReaders(deviceFiles, rawEvents, readErr)

		g.Go(func() error {
			tracker := touchTracker{centerX: cfg.Input.CenterX, centerY: cfg.Input.CenterY}
			for {
				select {
				case <-gctx.Done():
					return nil

				case err := <-readErr:
					return fmt.Errorf("input reader stopped: %w", err)

				case raw := <-rawEvents:
					ev := tracker.translate(raw)
					if ev == nil {
						continue
					}
					select {
					case events <- ev:
					case <-gctx.Done():
						return nil
					}
				}
			}
		})
	}

	logger.Info("listening",
		"ipc", cfg.IPC.SocketPath,
		"state_ws", cfg.StateWS.Addr+cfg.StateWS.Path,
		"input_devices", len(deviceFiles),
		"wedges", cfg.Wheel.WedgeCount,
		"tick_hz", motionCfg.TickHz)

	if err := g.Wait(); err != nil {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
