package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Flock   FlockConfig   `yaml:"flock" toml:"flock"`
	Network NetworkConfig `yaml:"network" toml:"network"`
	Sim     SimConfig     `yaml:"sim" toml:"sim"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// FlockConfig describes the initial population.
type FlockConfig struct {
	StartingCount int     `yaml:"starting_count" toml:"starting_count"`
	AgentDensity  float64 `yaml:"agent_density" toml:"agent_density"`
	MaxCoolness   int     `yaml:"max_coolness" toml:"max_coolness"`
	Seed          int64   `yaml:"seed" toml:"seed"` // 0 picks a time-based seed
}

// NetworkConfig drives the proximity graphs.
type NetworkConfig struct {
	NeighborRadius float64 `yaml:"neighbor_radius" toml:"neighbor_radius"`
	SpatialIndex   bool    `yaml:"spatial_index" toml:"spatial_index"`
}

type SimConfig struct {
	TickRate                  time.Duration `yaml:"tick_rate" toml:"tick_rate"`
	DriveFactor               float64       `yaml:"drive_factor" toml:"drive_factor"`
	MaxSpeed                  float64       `yaml:"max_speed" toml:"max_speed"`
	AvoidanceRadiusMultiplier float64       `yaml:"avoidance_radius_multiplier" toml:"avoidance_radius_multiplier"`
	RepartitionEvery          int           `yaml:"repartition_every" toml:"repartition_every"` // ticks, 0 disables
	RemoveEvery               int           `yaml:"remove_every" toml:"remove_every"`           // ticks between random removals, 0 disables
	Workers                   int           `yaml:"workers" toml:"workers"`                     // 0 uses GOMAXPROCS
}

type ServerConfig struct {
	ListenAddr    string        `yaml:"listen_addr" toml:"listen_addr"`
	WriteTimeout  time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	SnapshotEvery int           `yaml:"snapshot_every" toml:"snapshot_every"` // ticks
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

// Default mirrors the values the flock was originally tuned with.
func Default() *Config {
	return &Config{
		Flock: FlockConfig{
			StartingCount: 250,
			AgentDensity:  0.08,
			MaxCoolness:   10000,
		},
		Network: NetworkConfig{
			NeighborRadius: 1.5,
		},
		Sim: SimConfig{
			TickRate:                  50 * time.Millisecond,
			DriveFactor:               10,
			MaxSpeed:                  5,
			AvoidanceRadiusMultiplier: 0.5,
			RepartitionEvery:          1,
		},
		Server: ServerConfig{
			ListenAddr:    "127.0.0.1:8080",
			WriteTimeout:  5 * time.Second,
			SnapshotEvery: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	case ".toml":
		err = decodeTOML(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q: %w", path, ext, ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault returns Default() when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys %v: %w", undecoded, ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Flock.StartingCount <= 0 {
		errs = append(errs, errors.New("flock.starting_count must be positive"))
	}
	if c.Flock.AgentDensity <= 0 {
		errs = append(errs, errors.New("flock.agent_density must be positive"))
	}
	if c.Flock.MaxCoolness <= 0 {
		errs = append(errs, errors.New("flock.max_coolness must be positive"))
	}
	if c.Network.NeighborRadius <= 0 {
		errs = append(errs, errors.New("network.neighbor_radius must be positive"))
	}
	if c.Sim.TickRate <= 0 {
		errs = append(errs, errors.New("sim.tick_rate must be positive"))
	}
	if c.Sim.MaxSpeed <= 0 {
		errs = append(errs, errors.New("sim.max_speed must be positive"))
	}
	if c.Sim.RepartitionEvery < 0 {
		errs = append(errs, errors.New("sim.repartition_every must not be negative"))
	}
	if c.Sim.RemoveEvery < 0 {
		errs = append(errs, errors.New("sim.remove_every must not be negative"))
	}
	if c.Sim.Workers < 0 {
		errs = append(errs, errors.New("sim.workers must not be negative"))
	}
	if c.Server.SnapshotEvery <= 0 {
		errs = append(errs, errors.New("server.snapshot_every must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
