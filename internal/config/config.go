package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all simulation configuration values
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Agent      AgentConfig      `yaml:"agent"`
	Target     TargetConfig     `yaml:"target"`
	Combat     CombatConfig     `yaml:"combat"`
	Map        MapConfig        `yaml:"map"`
	Display    DisplayConfig    `yaml:"display"`
}

type SimulationConfig struct {
	TPS      int `yaml:"tps"`
	Workers  int `yaml:"workers"`
	MaxTicks int `yaml:"max_ticks"` // 0 runs until the window closes
}

type AgentConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Speed        float64 `yaml:"speed"`
	CornerInset  float64 `yaml:"corner_inset"`
	ProbeEpsilon float64 `yaml:"probe_epsilon"`
}

type TargetConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Speed     float64 `yaml:"speed"`
	SlowSpeed float64 `yaml:"slow_speed"` // used on the tick after an agent touched the target
	Health    int     `yaml:"health"`
}

type CombatConfig struct {
	AttackIntervalMS int `yaml:"attack_interval_ms"`
	AttackDamage     int `yaml:"attack_damage"`
}

type MapConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	TileSize     int    `yaml:"tile_size"`
	WindowTitle  string `yaml:"window_title"`
	ShowPaths    bool   `yaml:"show_paths"`
}

// GlobalConfig is set by the last successful LoadConfig call
var GlobalConfig *Config

// Default returns the built-in configuration used when no file is given
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{TPS: 60, Workers: 4},
		Agent: AgentConfig{
			Width:        0.8,
			Height:       0.8,
			Speed:        0.02,
			CornerInset:  0.999,
			ProbeEpsilon: 1e-5,
		},
		Target: TargetConfig{
			Width:     0.8,
			Height:    0.8,
			Speed:     0.05,
			SlowSpeed: 0.01,
			Health:    10,
		},
		Combat:  CombatConfig{AttackIntervalMS: 800, AttackDamage: 1},
		Map:     MapConfig{File: "arena.map"},
		Display: DisplayConfig{ScreenWidth: 800, ScreenHeight: 640, TileSize: 32, WindowTitle: "Grid Chase", ShowPaths: true},
	}
}

// LoadConfig loads the configuration from a yaml file. Fields missing from
// the file keep their Default values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}

	GlobalConfig = config
	return config, nil
}

// MustLoadConfig loads the configuration and panics on error
func MustLoadConfig(filename string) *Config {
	config, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return config
}

// Validate rejects values no simulation can run with
func (c *Config) Validate() error {
	if c.Simulation.TPS < 0 {
		return fmt.Errorf("simulation.tps must not be negative, got %d", c.Simulation.TPS)
	}
	if c.Agent.Speed < 0 || c.Target.Speed < 0 || c.Target.SlowSpeed < 0 {
		return fmt.Errorf("speeds must not be negative")
	}
	if c.Agent.Width > 1 || c.Agent.Height > 1 {
		return fmt.Errorf("agent must fit in one tile, got %.2fx%.2f", c.Agent.Width, c.Agent.Height)
	}
	if c.Agent.CornerInset > 1 {
		return fmt.Errorf("agent.corner_inset must be at most 1, got %v", c.Agent.CornerInset)
	}
	return nil
}

// Helper functions for easy access to commonly used values
func (c *Config) GetTPS() int {
	if c.Simulation.TPS <= 0 {
		return 60
	}
	return c.Simulation.TPS
}

func (c *Config) GetWorkers() int {
	if c.Simulation.Workers <= 0 {
		return 1
	}
	return c.Simulation.Workers
}

func (c *Config) GetAgentSpeed() float64 {
	if c.Agent.Speed <= 0 {
		return 0.02
	}
	return c.Agent.Speed
}

func (c *Config) GetTargetSpeed() float64 {
	return c.Target.Speed
}

// GetTargetSlowSpeed never exceeds the normal target speed
func (c *Config) GetTargetSlowSpeed() float64 {
	return math.Min(c.Target.SlowSpeed, c.Target.Speed)
}

func (c *Config) GetTileSize() int {
	if c.Display.TileSize <= 0 {
		return 32
	}
	return c.Display.TileSize
}

// AttackIntervalTicks converts the attack interval into whole ticks at the
// configured rate, rounding up so attacks are never faster than configured.
func (c *Config) AttackIntervalTicks() int {
	ms := c.Combat.AttackIntervalMS
	if ms <= 0 {
		return 1
	}
	ticks := int(math.Ceil(float64(ms) * float64(c.GetTPS()) / 1000))
	if ticks < 1 {
		return 1
	}
	return ticks
}

func (c *Config) GetAttackDamage() int {
	if c.Combat.AttackDamage <= 0 {
		return 1
	}
	return c.Combat.AttackDamage
}
