// Package touchconfig loads and validates the pipeline's configuration
// snapshot (spec.md §6): sensors, screens, TUIO endpoints, and the global
// tuning parameters shared by Fusion and the Tracker. A Config is immutable
// once returned from Load; reconfiguration replaces the whole snapshot
// rather than mutating one in place (spec.md §5).
package touchconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigInvalid is the sentinel wrapped by every validation failure,
// matching spec.md §7's `ConfigInvalid` error kind ("fatal at startup; the
// pipeline refuses to initialize").
var ErrConfigInvalid = errors.New("touchconfig: invalid configuration")

// maxConfigFileBytes guards against a runaway or corrupt config file,
// mirroring the teacher corpus's file-size check in internal/config.
const maxConfigFileBytes = 1 << 20 // 1MB

// SensorConfig describes one scan source, its placement in the world
// frame, and the per-sensor L2/L4 tuning spec.md §4.1 assigns it: the
// background-learning window size W, foreground threshold t, clustering
// parameters (eps, minPts), and the valid range window.
type SensorConfig struct {
	ID                 string  `yaml:"id"`
	URI                string  `yaml:"uri"` // e.g. "mock://replay.jsonl", "serial:///dev/ttyUSB0", "udp://0.0.0.0:9000"
	PoseX              float64 `yaml:"pose_x"`
	PoseY              float64 `yaml:"pose_y"`
	PoseTheta          float64 `yaml:"pose_theta"`
	MountingOffset     float64 `yaml:"mounting_offset"`
	AngularStepRadians float64 `yaml:"angular_step_radians"`
	StepCount          int     `yaml:"step_count"`

	WindowFrames    int     `yaml:"window_frames"`
	ForegroundDelta float64 `yaml:"foreground_delta"`
	MinRangeMeters  float64 `yaml:"min_range_meters"`
	MaxRangeMeters  float64 `yaml:"max_range_meters"`
	ClusterEps      float64 `yaml:"cluster_eps"`
	ClusterMinPts   int     `yaml:"cluster_min_pts"`
}

// ScreenConfig describes one ScreenRect and which sensors may contribute
// candidates to it (spec.md §4.2, §4.5).
type ScreenConfig struct {
	ID             int      `yaml:"id"`
	X              float64  `yaml:"x"`
	Y              float64  `yaml:"y"`
	W              float64  `yaml:"w"`
	H              float64  `yaml:"h"`
	Phi            float64  `yaml:"phi"`
	AllowedSensors []string `yaml:"allowed_sensors"`
}

// EndpointConfig describes one TUIO UDP destination (spec.md §4.8).
type EndpointConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ScreenID int    `yaml:"screen_id"`
}

// GlobalParams holds the tuning knobs shared across every screen's Fusion
// and Tracker instance (spec.md §6).
type GlobalParams struct {
	MergeRadius       float64       `yaml:"r_merge"`
	GateRadius        float64       `yaml:"r_gate"`
	Beta              float64       `yaml:"beta"`
	Gamma             float64       `yaml:"gamma"`
	DeathThreshold    int           `yaml:"death_threshold"`
	BirthGrace        int           `yaml:"birth_grace"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// DefaultGlobalParams returns spec.md's stated defaults.
func DefaultGlobalParams() GlobalParams {
	return GlobalParams{
		MergeRadius:       0.02,
		GateRadius:        0.08,
		Beta:              0.5,
		Gamma:             0.3,
		DeathThreshold:    3,
		BirthGrace:        2,
		HeartbeatInterval: time.Second,
	}
}

// Config is the full, validated, immutable configuration snapshot consumed
// by the pipeline (spec.md §6).
type Config struct {
	AppName   string           `yaml:"app_name"`
	HostName  string           `yaml:"host_name"`
	Sensors   []SensorConfig   `yaml:"sensors"`
	Screens   []ScreenConfig   `yaml:"screens"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
	Global    GlobalParams     `yaml:"global"`
}

// Load reads and parses a YAML config file (gopkg.in/yaml.v3, the same
// serialization library the teacher corpus uses for its own structured
// records) and validates it. Any structural problem is returned wrapped in
// ErrConfigInvalid.
func Load(path string) (Config, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return Config{}, fmt.Errorf("%w: stat %s: %v", ErrConfigInvalid, clean, err)
	}
	if info.Size() > maxConfigFileBytes {
		return Config{}, fmt.Errorf("%w: config file %s too large (%d bytes, max %d)", ErrConfigInvalid, clean, info.Size(), maxConfigFileBytes)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfigInvalid, clean, err)
	}

	cfg := Config{Global: DefaultGlobalParams()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrConfigInvalid, clean, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// defaultSensorConfig mirrors l2background.DefaultConfig and
// l4cluster.DefaultParams: a 50-frame (1.25 s at 40 Hz) learning window, a 4 mm
// foreground threshold, a 0.05-6 m valid range, and finger-sized DBSCAN
// parameters. touchconfig does not import those packages directly to stay
// a leaf dependency; the numbers are kept in sync by hand.
func defaultSensorConfig() SensorConfig {
	return SensorConfig{
		WindowFrames:    50,
		ForegroundDelta: 0.004,
		MinRangeMeters:  0.05,
		MaxRangeMeters:  6.0,
		ClusterEps:      0.02,
		ClusterMinPts:   3,
	}
}

// applyDefaults fills any zero-valued optional sensor field with the
// package defaults, so a YAML file only needs to name what it overrides.
func (c *Config) applyDefaults() {
	defaults := defaultSensorConfig()
	for i := range c.Sensors {
		s := &c.Sensors[i]
		if s.WindowFrames == 0 {
			s.WindowFrames = defaults.WindowFrames
		}
		if s.ForegroundDelta == 0 {
			s.ForegroundDelta = defaults.ForegroundDelta
		}
		if s.MinRangeMeters == 0 && s.MaxRangeMeters == 0 {
			s.MinRangeMeters = defaults.MinRangeMeters
			s.MaxRangeMeters = defaults.MaxRangeMeters
		}
		if s.ClusterEps == 0 {
			s.ClusterEps = defaults.ClusterEps
		}
		if s.ClusterMinPts == 0 {
			s.ClusterMinPts = defaults.ClusterMinPts
		}
	}
}

// Validate checks structural invariants the pipeline relies on: unique
// sensor and screen ids, endpoints pointing at configured screens, and
// sane (positive, finite-range) tuning parameters.
func (c Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("%w: app_name is required", ErrConfigInvalid)
	}

	seenSensors := make(map[string]struct{}, len(c.Sensors))
	for _, s := range c.Sensors {
		if s.ID == "" {
			return fmt.Errorf("%w: sensor with empty id", ErrConfigInvalid)
		}
		if _, dup := seenSensors[s.ID]; dup {
			return fmt.Errorf("%w: duplicate sensor id %q", ErrConfigInvalid, s.ID)
		}
		seenSensors[s.ID] = struct{}{}
		if s.URI == "" {
			return fmt.Errorf("%w: sensor %q has empty uri", ErrConfigInvalid, s.ID)
		}
		if s.StepCount <= 0 {
			return fmt.Errorf("%w: sensor %q step_count must be positive", ErrConfigInvalid, s.ID)
		}
		if s.WindowFrames <= 0 {
			return fmt.Errorf("%w: sensor %q window_frames must be positive", ErrConfigInvalid, s.ID)
		}
		if s.ForegroundDelta < 0 {
			return fmt.Errorf("%w: sensor %q foreground_delta must be non-negative", ErrConfigInvalid, s.ID)
		}
		if s.MinRangeMeters < 0 || s.MaxRangeMeters <= s.MinRangeMeters {
			return fmt.Errorf("%w: sensor %q has invalid range window [%f, %f]", ErrConfigInvalid, s.ID, s.MinRangeMeters, s.MaxRangeMeters)
		}
		if s.ClusterEps <= 0 || s.ClusterMinPts <= 0 {
			return fmt.Errorf("%w: sensor %q has invalid cluster parameters (eps=%f, minPts=%d)", ErrConfigInvalid, s.ID, s.ClusterEps, s.ClusterMinPts)
		}
	}

	seenScreens := make(map[int]struct{}, len(c.Screens))
	for _, sc := range c.Screens {
		if _, dup := seenScreens[sc.ID]; dup {
			return fmt.Errorf("%w: duplicate screen id %d", ErrConfigInvalid, sc.ID)
		}
		seenScreens[sc.ID] = struct{}{}
		if sc.W <= 0 || sc.H <= 0 {
			return fmt.Errorf("%w: screen %d must have positive width and height", ErrConfigInvalid, sc.ID)
		}
		for _, sensorID := range sc.AllowedSensors {
			if _, ok := seenSensors[sensorID]; !ok {
				return fmt.Errorf("%w: screen %d allows unknown sensor %q", ErrConfigInvalid, sc.ID, sensorID)
			}
		}
	}

	for _, ep := range c.Endpoints {
		if ep.Host == "" {
			return fmt.Errorf("%w: endpoint has empty host", ErrConfigInvalid)
		}
		if ep.Port <= 0 || ep.Port > 65535 {
			return fmt.Errorf("%w: endpoint %s has invalid port %d", ErrConfigInvalid, ep.Host, ep.Port)
		}
		if _, ok := seenScreens[ep.ScreenID]; !ok {
			return fmt.Errorf("%w: endpoint %s:%d references unknown screen %d", ErrConfigInvalid, ep.Host, ep.Port, ep.ScreenID)
		}
	}

	g := c.Global
	if g.MergeRadius <= 0 || g.GateRadius <= 0 {
		return fmt.Errorf("%w: r_merge and r_gate must be positive", ErrConfigInvalid)
	}
	if g.Beta <= 0 || g.Beta > 1 || g.Gamma <= 0 || g.Gamma > 1 {
		return fmt.Errorf("%w: beta and gamma must be in (0, 1]", ErrConfigInvalid)
	}
	if g.DeathThreshold <= 0 || g.BirthGrace < 0 {
		return fmt.Errorf("%w: death_threshold must be positive and birth_grace non-negative", ErrConfigInvalid)
	}
	if g.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat_interval must be positive", ErrConfigInvalid)
	}

	return nil
}
