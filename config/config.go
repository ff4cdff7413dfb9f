// Package config loads experiment settings from YAML.
package config

import (
	"fmt"
	"os"

	"civ/agent"
	"civ/meta"
	"civ/reward"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Game     Game    `yaml:"game"`
	Agents   []Agent `yaml:"agents"`
	Output   Output  `yaml:"output"`
}

type Game struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	MaxTurns int    `yaml:"max_turns"`
	Games    int    `yaml:"games"`
	Seed     uint64 `yaml:"seed"`
}

type Agent struct {
	Kind            agent.Kind                     `yaml:"kind"`
	Name            string                         `yaml:"name"`
	Hyperparameters agent.Hyperparameters          `yaml:"hyperparameters"`
	Rewards         map[reward.Type]RewardOverride `yaml:"rewards"`
}

// RewardOverride changes one reward weight; unset fields keep the default.
type RewardOverride struct {
	Value   *float64 `yaml:"value"`
	Enabled *bool    `yaml:"enabled"`
}

type Output struct {
	Database   string `yaml:"database"`
	RecordsDir string `yaml:"records_dir"`
	Chart      bool   `yaml:"chart"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Game: Game{
			Width:    meta.MAP_WIDTH,
			Height:   meta.MAP_HEIGHT,
			MaxTurns: meta.MAX_TURNS,
			Games:    meta.NUM_GAMES,
			Seed:     1,
		},
		Agents: []Agent{
			{Kind: agent.KindQLearn},
			{Kind: agent.KindBasic},
		},
		Output: Output{
			Database:   "agents.db",
			RecordsDir: "results",
			Chart:      true,
		},
	}
}

// Load overlays the YAML file at path onto Default and validates the result.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.Game.Width < 8 || c.Game.Height < 8 {
		return fmt.Errorf("map must be at least 8x8, got %dx%d", c.Game.Width, c.Game.Height)
	}
	if c.Game.MaxTurns <= 0 || c.Game.Games <= 0 {
		return fmt.Errorf("max turns and games must be positive")
	}
	if len(c.Agents) < 2 {
		return fmt.Errorf("need at least two agents, got %d", len(c.Agents))
	}
	for i, a := range c.Agents {
		if _, err := agent.ParseKind(string(a.Kind)); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
		if _, err := a.RewardSpec(); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// RewardSpec applies the overrides to the default reward weights.
func (a Agent) RewardSpec() (reward.Spec, error) {
	spec := reward.DefaultSpec()
	for t, o := range a.Rewards {
		s, ok := spec[t]
		if !ok {
			return nil, fmt.Errorf("unknown reward type %q", t)
		}
		if o.Value != nil {
			s.Value = *o.Value
		}
		if o.Enabled != nil {
			s.Enabled = *o.Enabled
		}
		spec[t] = s
	}
	return spec, nil
}

// Options turns the agent settings into constructor options.
func (a Agent) Options() []agent.Option {
	options := []agent.Option{
		agent.WithName(a.Name),
		agent.WithHyperparameters(a.Hyperparameters),
	}
	if len(a.Rewards) > 0 {
		if spec, err := a.RewardSpec(); err == nil {
			options = append(options, agent.WithRewards(spec))
		}
	}
	return options
}
