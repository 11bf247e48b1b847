package config

import (
	"fmt"
	"os"
	"time"

	"voxterrain/internal/terrain"
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Config struct {
	World     WorldConfig     `yaml:"world"`
	Stream    StreamConfig    `yaml:"stream"`
	Generator GeneratorConfig `yaml:"generator"`
	Store     StoreConfig     `yaml:"store"`
	Session   SessionConfig   `yaml:"session"`
}

type WorldConfig struct {
	ChunkSize     [3]float32 `yaml:"chunk_size"`
	ChunkVoxels   [3]int     `yaml:"chunk_voxels"`
	Origin        [3]float32 `yaml:"origin"`
	IsoLevel      float32    `yaml:"iso_level"`
	MinChunkBound [3]int     `yaml:"min_chunk_bound"`
	MaxChunkBound [3]int     `yaml:"max_chunk_bound"`
}

type StreamConfig struct {
	LoadDistance    int `yaml:"load_distance"`
	DestroyDistance int `yaml:"destroy_distance"`
	MeshWorkers     int `yaml:"mesh_workers"`
	CapacityFactor  int `yaml:"capacity_factor"`
}

type GeneratorConfig struct {
	Kind            string     `yaml:"kind"`
	Seed            int64      `yaml:"seed"`
	SurfaceLevel    float64    `yaml:"surface_level"`
	NoiseScale      [3]float64 `yaml:"noise_scale"`
	NoiseOffset     [3]float64 `yaml:"noise_offset"`
	HeightAmplitude float64    `yaml:"height_amplitude"`
	HeightScale     float64    `yaml:"height_scale"`
	Octaves         int        `yaml:"octaves"`
	CaveScale       [3]float64 `yaml:"cave_scale"`
	CaveThreshold   float64    `yaml:"cave_threshold"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"` // "sqlite" or "memory"
	Path       string `yaml:"path"`
	FlushEvery int    `yaml:"flush_every_ticks"`
}

type SessionConfig struct {
	TickRate int          `yaml:"tick_rate"`
	Ticks    int          `yaml:"ticks"`
	SlowTick string       `yaml:"slow_tick"`
	Path     PathConfig   `yaml:"path"`
	Edits    []EditConfig `yaml:"edits"`
}

type PathConfig struct {
	Kind     string     `yaml:"kind"` // "fixed", "linear" or "orbit"
	Start    [3]float32 `yaml:"start"`
	Velocity [3]float32 `yaml:"velocity"` // world units per tick
	Center   [3]float32 `yaml:"center"`
	Radius   float32    `yaml:"radius"`
	Period   int        `yaml:"period_ticks"`
}

type EditConfig struct {
	Tick   int        `yaml:"tick"`
	Pos    [3]float32 `yaml:"pos"`
	Shape  string     `yaml:"shape"` // "cube" or "sphere"
	Radius int        `yaml:"radius"`
	Fill   float32    `yaml:"fill"`

	// Ray, if set, casts from Pos along this direction and edits at the hit.
	Ray *[3]float32 `yaml:"ray,omitempty"`
}

// Default returns the configuration the terrain was tuned with: 16 voxel
// chunks of 16 world units and the complex generator.
func Default() *Config {
	g := terrain.DefaultSettings()
	return &Config{
		World: WorldConfig{
			ChunkSize:     [3]float32{16, 16, 16},
			ChunkVoxels:   [3]int{16, 16, 16},
			MinChunkBound: [3]int{-64, 0, -64},
			MaxChunkBound: [3]int{64, 15, 64},
		},
		Stream: StreamConfig{
			LoadDistance:    4,
			DestroyDistance: 6,
			CapacityFactor:  5,
		},
		Generator: GeneratorConfig{
			Kind:            g.Kind.String(),
			Seed:            g.Seed,
			SurfaceLevel:    g.SurfaceLevel,
			NoiseScale:      g.NoiseScale,
			NoiseOffset:     g.NoiseOffset,
			HeightAmplitude: g.HeightAmplitude,
			HeightScale:     g.HeightScale,
			Octaves:         g.Octaves,
			CaveScale:       g.CaveScale,
			CaveThreshold:   g.CaveThreshold,
		},
		Store: StoreConfig{
			Driver:     "memory",
			FlushEvery: 300,
		},
		Session: SessionConfig{
			TickRate: 30,
			SlowTick: "50ms",
			Path:     PathConfig{Kind: "fixed", Start: [3]float32{0, 112, 0}},
		},
	}
}

// Load reads a YAML file on top of Default, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	for i := range 3 {
		if c.World.MinChunkBound[i] > c.World.MaxChunkBound[i] {
			return fmt.Errorf("world.min_chunk_bound %v exceeds max_chunk_bound %v",
				c.World.MinChunkBound, c.World.MaxChunkBound)
		}
	}
	if c.Stream.LoadDistance < MinLoadDistance || c.Stream.LoadDistance > MaxLoadDistance {
		return fmt.Errorf("stream.load_distance must be between %d and %d", MinLoadDistance, MaxLoadDistance)
	}
	if c.Stream.DestroyDistance > 2*MaxLoadDistance {
		return fmt.Errorf("stream.destroy_distance cannot exceed %d", 2*MaxLoadDistance)
	}
	if c.Stream.DestroyDistance < c.Stream.LoadDistance {
		c.Stream.DestroyDistance = c.Stream.LoadDistance
	}
	if c.Stream.MeshWorkers < 0 {
		return fmt.Errorf("stream.mesh_workers cannot be negative")
	}
	if _, err := terrain.ParseKind(c.Generator.Kind); err != nil {
		return fmt.Errorf("generator.kind: %w", err)
	}
	switch c.Store.Driver {
	case "", "memory":
		c.Store.Driver = "memory"
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path must be set for the sqlite driver")
		}
	default:
		return fmt.Errorf("store.driver must be either 'memory' or 'sqlite'")
	}
	if c.Session.TickRate < 0 || c.Session.TickRate > MaxTickRate {
		return fmt.Errorf("session.tick_rate must be between 0 and %d", MaxTickRate)
	}
	if c.Session.SlowTick == "" {
		c.Session.SlowTick = "50ms"
	}
	if _, err := time.ParseDuration(c.Session.SlowTick); err != nil {
		return fmt.Errorf("session.slow_tick invalid: %w", err)
	}
	switch c.Session.Path.Kind {
	case "", "fixed", "linear":
	case "orbit":
		if c.Session.Path.Period <= 0 {
			return fmt.Errorf("session.path.period_ticks must be positive for orbit paths")
		}
	default:
		return fmt.Errorf("session.path.kind must be one of 'fixed', 'linear' or 'orbit'")
	}
	for i, e := range c.Session.Edits {
		if e.Shape != "cube" && e.Shape != "sphere" {
			return fmt.Errorf("session.edits[%d].shape must be either 'cube' or 'sphere'", i)
		}
		if e.Radius <= 0 {
			return fmt.Errorf("session.edits[%d].radius must be positive", i)
		}
	}
	return nil
}

// Layout returns the chunk tiling described by the world section.
func (c *Config) Layout() voxel.Layout {
	return voxel.Layout{
		ChunkSize:   mgl32.Vec3(c.World.ChunkSize),
		ChunkVoxels: voxel.FromArray(c.World.ChunkVoxels),
		Origin:      mgl32.Vec3(c.World.Origin),
	}
}

// GeneratorSettings converts the generator section for terrain.New.
func (c *Config) GeneratorSettings() (terrain.Settings, error) {
	kind, err := terrain.ParseKind(c.Generator.Kind)
	if err != nil {
		return terrain.Settings{}, err
	}
	g := c.Generator
	return terrain.Settings{
		Kind:            kind,
		Seed:            g.Seed,
		SurfaceLevel:    g.SurfaceLevel,
		NoiseScale:      g.NoiseScale,
		NoiseOffset:     g.NoiseOffset,
		HeightAmplitude: g.HeightAmplitude,
		HeightScale:     g.HeightScale,
		Octaves:         g.Octaves,
		CaveScale:       g.CaveScale,
		CaveThreshold:   g.CaveThreshold,
	}, nil
}

// StreamSettings builds the runtime-adjustable streaming parameters.
func (c *Config) StreamSettings() *StreamSettings {
	return NewStreamSettings(c.Stream.LoadDistance, c.Stream.DestroyDistance, c.Session.TickRate)
}

// SlowTick returns the threshold above which a tick is logged.
func (c *Config) SlowTick() time.Duration {
	d, err := time.ParseDuration(c.Session.SlowTick)
	if err != nil {
		return 50 * time.Millisecond
	}
	return d
}
