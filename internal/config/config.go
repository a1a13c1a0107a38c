package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped to keys
const EnvPrefix = "TABPP_"

// Backend names accepted in the configuration
const (
	BackendSysfs        = "sysfs"
	BackendLogind       = "logind"
	BackendMock         = "mock"
	BackendCommand      = "command"
	BackendPowerProfile = "power-profiles-daemon"
	BackendMemory       = "memory"
	BackendSQLite       = "sqlite"
)

// Config holds daemon configuration
type Config struct {
	// PollInterval is the ambient poller interval in seconds
	PollInterval float64          `koanf:"poll_interval"`
	Profile      ProfileConfig    `koanf:"profile"`
	Backlight    BacklightConfig  `koanf:"backlight"`
	Sensor       SensorConfig     `koanf:"sensor"`
	Battery      BatteryConfig    `koanf:"battery"`
	Transition   TransitionConfig `koanf:"transition"`
	GRPC         GRPCConfig       `koanf:"grpc"`
	Journal      JournalConfig    `koanf:"journal"`
}

type ProfileConfig struct {
	AC      string `koanf:"ac"`
	Battery string `koanf:"battery"`
	Backend string `koanf:"backend"`
	Command string `koanf:"command"`
}

type BacklightConfig struct {
	Backend string `koanf:"backend"`
	Device  string `koanf:"device"`
	// Session is the logind session object used by the logind backend.
	// Empty means session/self, which only exists for a user-session process.
	Session string `koanf:"session"`
}

type SensorConfig struct {
	Backend   string `koanf:"backend"`
	Device    string `koanf:"device"`
	Attribute string `koanf:"attribute"`
}

type BatteryConfig struct {
	Device string `koanf:"device"`
}

type TransitionConfig struct {
	Scale       int `koanf:"scale"`
	Steps       int `koanf:"steps"`
	StepDelayMS int `koanf:"step_delay_ms"`
}

type GRPCConfig struct {
	Listen  string `koanf:"listen"`
	TLSCert string `koanf:"tls_cert"`
	TLSKey  string `koanf:"tls_key"`
	TLSCA   string `koanf:"tls_ca"`
}

type JournalConfig struct {
	Backend  string `koanf:"backend"`
	Path     string `koanf:"path"`
	Capacity int    `koanf:"capacity"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		PollInterval: 1.0,
		Profile: ProfileConfig{
			AC:      "throughput-performance",
			Battery: "powersave",
			Backend: BackendCommand,
			Command: "tuned-adm profile",
		},
		Backlight: BacklightConfig{Backend: BackendSysfs},
		Sensor: SensorConfig{
			Backend:   BackendSysfs,
			Attribute: "in_illuminance_raw",
		},
		Battery: BatteryConfig{Device: "/org/freedesktop/UPower/devices/DisplayDevice"},
		Transition: TransitionConfig{
			Scale:       200,
			Steps:       10,
			StepDelayMS: 50,
		},
		Journal: JournalConfig{
			Backend:  BackendMemory,
			Path:     "/var/lib/tabppd/journal.db",
			Capacity: 256,
		},
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when path is empty), then TABPP_ environment variables.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file falls back to the other sources
func LoadOptional(path string) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

var sections = []string{"profile", "backlight", "sensor", "battery", "transition", "grpc", "journal"}

// envKey maps TABPP_BACKLIGHT_DEVICE to backlight.device and
// TABPP_POLL_INTERVAL to poll_interval.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.Profile.AC == "" || c.Profile.Battery == "" {
		return errors.New("profile.ac and profile.battery must be set")
	}

	switch c.Profile.Backend {
	case BackendCommand:
		if strings.TrimSpace(c.Profile.Command) == "" {
			return errors.New("profile.command must be set for the command backend")
		}
	case BackendPowerProfile, BackendMock:
	default:
		return fmt.Errorf("unknown profile.backend %q", c.Profile.Backend)
	}

	switch c.Backlight.Backend {
	case BackendSysfs, BackendLogind:
		if c.Backlight.Device == "" {
			return fmt.Errorf("backlight.device is required for the %s backend", c.Backlight.Backend)
		}
	case BackendMock:
	default:
		return fmt.Errorf("unknown backlight.backend %q", c.Backlight.Backend)
	}
	if c.Backlight.Session != "" && !dbus.ObjectPath(c.Backlight.Session).IsValid() {
		return fmt.Errorf("backlight.session %q is not a D-Bus object path", c.Backlight.Session)
	}

	switch c.Sensor.Backend {
	case BackendSysfs:
		if c.Sensor.Device == "" {
			return errors.New("sensor.device is required for the sysfs backend")
		}
	case BackendMock:
	default:
		return fmt.Errorf("unknown sensor.backend %q", c.Sensor.Backend)
	}

	if c.Transition.Scale < 0 {
		return fmt.Errorf("transition.scale must not be negative, got %d", c.Transition.Scale)
	}
	if c.Transition.Steps < 1 {
		return fmt.Errorf("transition.steps must be at least 1, got %d", c.Transition.Steps)
	}
	if c.Transition.StepDelayMS < 0 {
		return fmt.Errorf("transition.step_delay_ms must not be negative, got %d", c.Transition.StepDelayMS)
	}
	if c.GRPC.TLSCert != "" && (c.GRPC.TLSKey == "" || c.GRPC.TLSCA == "") {
		return errors.New("grpc.tls_key and grpc.tls_ca are required with grpc.tls_cert")
	}
	switch c.Journal.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Journal.Path == "" {
			return errors.New("journal.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown journal.backend %q", c.Journal.Backend)
	}
	if c.Journal.Capacity < 1 {
		return fmt.Errorf("journal.capacity must be at least 1, got %d", c.Journal.Capacity)
	}
	return nil
}

// Interval returns PollInterval as a duration
func (c Config) Interval() time.Duration {
	return time.Duration(c.PollInterval * float64(time.Second))
}

// StepDelay returns the pause between transition steps
func (t TransitionConfig) StepDelay() time.Duration {
	return time.Duration(t.StepDelayMS) * time.Millisecond
}
