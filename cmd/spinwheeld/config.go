package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MotionConfig contains all tunable parameters for the wheel motion engine.
// It is derived from the file config once at startup and passed to Reduce()
// on every event.
type MotionConfig struct {
	// Velocity estimation
	MaxVelocity    float64 // clamp for measured fling velocity (rad/s)
	MinSpinRadians float64 // gestures below this arc report velocity 0

	// Deceleration
	DecayMultiplier float64 // per-tick velocity multiplier, must be in (0, maxDecayMultiplier)
	SpeedToSnap     float64 // hand-off velocity from decelerating to snapping (rad/s)

	// Snapping
	SnapDivisor   float64 // exponential-approach divisor (step = remaining / divisor)
	SnapProximity float64 // remaining arc at or below which the snap completes (rad)

	// Geometry / cadence
	ReferenceAngle    float64 // fixed angle a selected wedge is centered on
	MinDistFromCenter float64 // hub dead zone radius in input units
	TickHz            float64 // animation tick rate
}

// Config is the top-level YAML configuration for the spinwheeld daemon.
//
// The config file is the primary configuration surface; flags exist for
// small overrides and for environments where a file is awkward.
type Config struct {
	// Wheel layout
	Wheel WheelConfig `yaml:"wheel"`

	// Motion engine tuning
	Motion MotionFileConfig `yaml:"motion"`

	// Touch input devices
	Input InputConfig `yaml:"input"`

	// IPC configuration
	IPC IPCConfig `yaml:"ipc"`

	// State websocket server
	StateWS StateWSConfig `yaml:"state_ws"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type WheelConfig struct {
	// WedgeCount below two yields an inactive wheel: nothing is drawn and
	// all motion entry points no-op until a valid reload.
	WedgeCount int `yaml:"wedge_count"`

	// ReferenceAngleRad is the fixed "selected" angle. Defaults to π/2 (up).
	ReferenceAngleRad float64 `yaml:"reference_angle_rad,omitempty"`
}

type InputConfig struct {
	Devices []string `yaml:"devices,omitempty"` // evdev touch devices to monitor

	// Wheel center in device coordinates; pointer samples are re-based
	// around it before reaching the core.
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"`
}

type StateWSConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MotionFileConfig is the user-facing motion configuration as represented in
// YAML. It maps 1:1 to MotionConfig but uses YAML-friendly field names.
type MotionFileConfig struct {
	MaxVelocityRadPerSec float64 `yaml:"max_velocity_rad_per_sec"`
	MinSpinRadians       float64 `yaml:"min_spin_radians"`

	DecayMultiplier      float64 `yaml:"decay_multiplier"`
	SpeedToSnapRadPerSec float64 `yaml:"speed_to_snap_rad_per_sec"`

	SnapDivisor      float64 `yaml:"snap_divisor"`
	SnapProximityRad float64 `yaml:"snap_proximity_rad"`

	MinDistFromCenter float64 `yaml:"min_dist_from_center"`
	TickHz            int     `yaml:"tick_hz"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go.
func DefaultConfig() Config {
	return Config{
		Wheel: WheelConfig{
			WedgeCount:        defaultWedgeCount,
			ReferenceAngleRad: defaultReferenceAngle,
		},
		Motion: MotionFileConfig{
			MaxVelocityRadPerSec: defaultMaxVelocityRadPerS,
			MinSpinRadians:       defaultMinSpinRadians,
			DecayMultiplier:      defaultDecayMultiplier,
			SpeedToSnapRadPerSec: defaultSpeedToSnap,
			SnapDivisor:          defaultSnapDivisor,
			SnapProximityRad:     defaultSnapProximityRad,
			MinDistFromCenter:    defaultMinDistFromCenter,
			TickHz:               defaultTickHz,
		},
		Input: InputConfig{
			Devices: nil, // touch input is optional; IPC can drive the wheel
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/spinwheeld.sock",
		},
		StateWS: StateWSConfig{
			Addr: "127.0.0.1:3002",
			Path: "/ws/state",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file.
//
// Unknown fields are rejected (helps catch typos) via KnownFields(true), and
// trailing documents are treated as errors.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies flag values on top of a loaded config. Each override
// is only applied if its pointer is non-nil.
type FlagOverrides struct {
	WedgeCount *int

	InputDevice *string
	CenterX     *float64
	CenterY     *float64

	DecayMultiplier *float64
	TickHz          *int

	IPCSocketPath *string
	StateWSAddr   *string

	LogLevel *string
}

// Apply merges the overrides into cfg. Nil pointers are ignored.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.WedgeCount != nil {
		cfg.Wheel.WedgeCount = *o.WedgeCount
	}
	if o.InputDevice != nil {
		cfg.Input.Devices = []string{*o.InputDevice}
	}
	if o.CenterX != nil {
		cfg.Input.CenterX = *o.CenterX
	}
	if o.CenterY != nil {
		cfg.Input.CenterY = *o.CenterY
	}
	if o.DecayMultiplier != nil {
		cfg.Motion.DecayMultiplier = *o.DecayMultiplier
	}
	if o.TickHz != nil {
		cfg.Motion.TickHz = *o.TickHz
	}
	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}
	if o.StateWSAddr != nil {
		cfg.StateWS.Addr = *o.StateWSAddr
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// Intended to be called after defaults + file + overrides are applied.
//
// Note: wheel.wedge_count below two is NOT a config error. It produces an
// inactive wheel at runtime; callers recover by reloading a valid layout.
func (c *Config) Validate() error {
	// Motion
	if c.Motion.DecayMultiplier <= 0 {
		return errors.New("motion.decay_multiplier must be > 0")
	}
	if c.Motion.DecayMultiplier >= maxDecayMultiplier {
		// At or above this, deceleration takes impractically long and may
		// never reach the stop threshold under floating-point rounding.
		return fmt.Errorf("motion.decay_multiplier must be < %v", maxDecayMultiplier)
	}
	if c.Motion.MaxVelocityRadPerSec <= 0 {
		return errors.New("motion.max_velocity_rad_per_sec must be > 0")
	}
	if c.Motion.MinSpinRadians < 0 {
		return errors.New("motion.min_spin_radians must be >= 0")
	}
	if c.Motion.SpeedToSnapRadPerSec <= 0 {
		return errors.New("motion.speed_to_snap_rad_per_sec must be > 0")
	}
	if c.Motion.SnapDivisor <= 1 {
		return errors.New("motion.snap_divisor must be > 1")
	}
	if c.Motion.SnapProximityRad <= 0 {
		return errors.New("motion.snap_proximity_rad must be > 0")
	}
	if c.Motion.MinDistFromCenter < 0 {
		return errors.New("motion.min_dist_from_center must be >= 0")
	}
	if c.Motion.TickHz <= 0 || c.Motion.TickHz > 1000 {
		return errors.New("motion.tick_hz must be between 1 and 1000")
	}

	// Input devices are optional, but configured paths must be non-empty.
	for i, dev := range c.Input.Devices {
		if dev == "" {
			return fmt.Errorf("input.devices[%d] is empty", i)
		}
	}

	// IPC / websocket
	if c.IPC.SocketPath == "" {
		return errors.New("ipc.socket_path must not be empty")
	}
	if c.StateWS.Addr == "" {
		return errors.New("state_ws.addr must not be empty")
	}
	if c.StateWS.Path == "" {
		return errors.New("state_ws.path must not be empty")
	}

	// Logging
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}

	return nil
}

// ToMotionConfig converts the file config into the internal engine config.
func (c *Config) ToMotionConfig() MotionConfig {
	ref := c.Wheel.ReferenceAngleRad
	if ref == 0 {
		ref = defaultReferenceAngle
	}
	return MotionConfig{
		MaxVelocity:    c.Motion.MaxVelocityRadPerSec,
		MinSpinRadians: c.Motion.MinSpinRadians,

		DecayMultiplier: c.Motion.DecayMultiplier,
		SpeedToSnap:     c.Motion.SpeedToSnapRadPerSec,

		SnapDivisor:   c.Motion.SnapDivisor,
		SnapProximity: c.Motion.SnapProximityRad,

		ReferenceAngle:    ref,
		MinDistFromCenter: c.Motion.MinDistFromCenter,
		TickHz:            float64(c.Motion.TickHz),
	}
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
