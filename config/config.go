// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig             `yaml:"physics"`
	Liquids   map[string]LiquidConfig   `yaml:"liquids"`
	Creatures map[string]CreatureConfig `yaml:"creatures"`
	Level     LevelConfig               `yaml:"level"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
	Tuning    TuningConfig              `yaml:"tuning"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig selects and configures the rigid-body backend.
type PhysicsConfig struct {
	Engine             string  `yaml:"engine"` // "chipmunk" or "box2d"
	DT                 float64 `yaml:"dt"`
	GravityX           float64 `yaml:"gravity_x"`
	GravityY           float64 `yaml:"gravity_y"`
	Iterations         int     `yaml:"iterations"`          // solver iterations (box2d: velocity iterations)
	PositionIterations int     `yaml:"position_iterations"` // box2d only
	Damping            float64 `yaml:"damping"`             // fraction of velocity kept per second
}

// LiquidConfig describes one kind of liquid.
// A liquid listed in a user file replaces the default entry whole.
type LiquidConfig struct {
	Density       float64        `yaml:"density"`
	Friction      float64        `yaml:"friction"`
	Elasticity    float64        `yaml:"elasticity"`
	ClumpingForce float64        `yaml:"clumping_force"`
	Categories    uint32         `yaml:"categories"`
	Mask          uint32         `yaml:"mask"`
	ContactTag    uint32         `yaml:"contact_tag"`
	Attack        AttackConfig   `yaml:"attack"`
	Particle      ParticleConfig `yaml:"particle"`
	Emitter       EmitterConfig  `yaml:"emitter"`
}

// AttackConfig is a hazard's damage per second of contact.
type AttackConfig struct {
	Strength float64 `yaml:"strength"`
	Injury   string  `yaml:"injury"` // none, acid, fire
}

// ParticleConfig is the per-particle template of a liquid.
type ParticleConfig struct {
	Radius            float64 `yaml:"radius"`
	VisualRadiusScale float64 `yaml:"visual_radius_scale"`
	LinearDamping     float64 `yaml:"linear_damping"`
	AngularDamping    float64 `yaml:"angular_damping"`
	Lifespan          float64 `yaml:"lifespan"` // seconds; 0 = immortal
	Entrance          float64 `yaml:"entrance"`
	Exit              float64 `yaml:"exit"`
}

// EmitterConfig makes a pool keep flowing. Rate 0 disables it.
type EmitterConfig struct {
	Rate   float64 `yaml:"rate"`   // particles per second
	Jitter float64 `yaml:"jitter"` // spawn position jitter radius
}

// CreatureConfig describes one kind of creature.
type CreatureConfig struct {
	Topology        string  `yaml:"topology"`
	Radius          float64 `yaml:"radius"`
	NumParticles    int     `yaml:"num_particles"`
	SegmentRadius   float64 `yaml:"segment_radius"`
	CentralRadius   float64 `yaml:"central_radius"`
	Density         float64 `yaml:"density"`
	Friction        float64 `yaml:"friction"`
	Elasticity      float64 `yaml:"elasticity"`
	SpringStiffness float64 `yaml:"spring_stiffness"`
	SpringDamping   float64 `yaml:"spring_damping"`
	MotorMaxForce   float64 `yaml:"motor_max_force"`
	PulsePeriod     float64 `yaml:"pulse_period"`
	PulseMagnitude  float64 `yaml:"pulse_magnitude"`
	Intro           float64 `yaml:"intro"`             // self-timed growth seconds
	Extro           float64 `yaml:"extro"`             // self-timed fade seconds; 0 dies instantly
	External        bool    `yaml:"externally_driven"` // lifecycle set by the level instead
	Health          float64 `yaml:"health"`
	MaxSpeed        float64 `yaml:"max_speed"`
	WanderScale     float64 `yaml:"wander_scale"`    // noise frequency of desired speed
	SmoothFrequency float64 `yaml:"smooth_frequency"` // harmonica spring angular frequency
	SmoothDamping   float64 `yaml:"smooth_damping"`   // harmonica damping ratio
	Categories      uint32  `yaml:"categories"`
	Mask            uint32  `yaml:"mask"`
	ContactTag      uint32  `yaml:"contact_tag"`
}

// LevelConfig lays out the headless level.
type LevelConfig struct {
	Width     float64         `yaml:"width"`
	Height    float64         `yaml:"height"`
	Seed      int64           `yaml:"seed"`
	MaxTicks  int             `yaml:"max_ticks"`
	Pools     []PoolConfig    `yaml:"pools"`
	Creatures []SpawnConfig   `yaml:"creatures"`
	Ground    []SegmentConfig `yaml:"ground"`
}

// PoolConfig places a circular fill of a liquid.
type PoolConfig struct {
	Liquid string  `yaml:"liquid"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	Emit   bool    `yaml:"emit"` // attach the liquid's emitter at the pool center
}

// SpawnConfig places one creature.
type SpawnConfig struct {
	Kind   string  `yaml:"kind"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Organs int     `yaml:"organs"`
}

// SegmentConfig is a static ground segment.
type SegmentConfig struct {
	X1     float64 `yaml:"x1"`
	Y1     float64 `yaml:"y1"`
	X2     float64 `yaml:"x2"`
	Y2     float64 `yaml:"y2"`
	Radius float64 `yaml:"radius"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds of sim time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks averaged by the perf collector
	OutputDir           string  `yaml:"output_dir"`            // empty disables CSV output
}

// TuningConfig drives cmd/tune.
type TuningConfig struct {
	Liquid       string  `yaml:"liquid"`
	FillRadius   float64 `yaml:"fill_radius"`
	Settle       float64 `yaml:"settle"` // seconds simulated per evaluation
	Population   int     `yaml:"population"`
	InitStepSize float64 `yaml:"init_step_size"`
	MaxEvals     int     `yaml:"max_evals"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Gravity       r2.Vec   // Physics.GravityX/Y as a vector
	LiquidNames   []string // sorted keys of Liquids
	CreatureNames []string // sorted keys of Creatures
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file; map entries are replaced whole.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config and fills
// zero fields with usable defaults.
func (c *Config) computeDerived() {
	if c.Physics.Engine == "" {
		c.Physics.Engine = "chipmunk"
	}
	if c.Physics.DT == 0 {
		c.Physics.DT = 1.0 / 60
	}
	if c.Physics.Iterations == 0 {
		c.Physics.Iterations = 10
	}
	if c.Physics.PositionIterations == 0 {
		c.Physics.PositionIterations = 3
	}
	c.Derived.Gravity = r2.Vec{X: c.Physics.GravityX, Y: c.Physics.GravityY}

	c.Derived.LiquidNames = c.Derived.LiquidNames[:0]
	for name, l := range c.Liquids {
		if l.Density == 0 {
			l.Density = 1
		}
		if l.Categories == 0 {
			l.Categories = ^uint32(0)
		}
		if l.Mask == 0 {
			l.Mask = ^uint32(0)
		}
		if l.Particle.Radius == 0 {
			l.Particle.Radius = 0.25
		}
		if l.Particle.VisualRadiusScale == 0 {
			l.Particle.VisualRadiusScale = 1
		}
		c.Liquids[name] = l
		c.Derived.LiquidNames = append(c.Derived.LiquidNames, name)
	}
	sort.Strings(c.Derived.LiquidNames)

	c.Derived.CreatureNames = c.Derived.CreatureNames[:0]
	for name, cc := range c.Creatures {
		if cc.Topology == "" {
			cc.Topology = name
		}
		if cc.Health == 0 {
			cc.Health = 100
		}
		if cc.Categories == 0 {
			cc.Categories = ^uint32(0)
		}
		if cc.Mask == 0 {
			cc.Mask = ^uint32(0)
		}
		if cc.SmoothFrequency == 0 {
			cc.SmoothFrequency = 4
		}
		if cc.SmoothDamping == 0 {
			cc.SmoothDamping = 1
		}
		if cc.WanderScale == 0 {
			cc.WanderScale = 0.2
		}
		c.Creatures[name] = cc
		c.Derived.CreatureNames = append(c.Derived.CreatureNames, name)
	}
	sort.Strings(c.Derived.CreatureNames)

	if c.Telemetry.StatsWindow == 0 {
		c.Telemetry.StatsWindow = 5
	}
	if c.Telemetry.PerfCollectorWindow == 0 {
		c.Telemetry.PerfCollectorWindow = 120
	}
}

// Validate checks names and references that the simulation would otherwise
// panic on.
func (c *Config) Validate() error {
	switch c.Physics.Engine {
	case "chipmunk", "box2d":
	default:
		return fmt.Errorf("physics.engine: unknown engine %q", c.Physics.Engine)
	}
	for _, name := range c.Derived.LiquidNames {
		if _, err := c.Liquids[name].FieldConfig(); err != nil {
			return fmt.Errorf("liquids.%s: %w", name, err)
		}
	}
	for _, name := range c.Derived.CreatureNames {
		if _, err := c.Creatures[name].Params(); err != nil {
			return fmt.Errorf("creatures.%s: %w", name, err)
		}
	}
	for i, p := range c.Level.Pools {
		if _, ok := c.Liquids[p.Liquid]; !ok {
			return fmt.Errorf("level.pools[%d]: unknown liquid %q", i, p.Liquid)
		}
	}
	for i, s := range c.Level.Creatures {
		if _, ok := c.Creatures[s.Kind]; !ok {
			return fmt.Errorf("level.creatures[%d]: unknown creature %q", i, s.Kind)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
