// Package config loads match and experiment settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"treesearch/engine"
)

var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// Component names a registered factory and its parameters.
type Component struct {
	Kind   string         `yaml:"kind" validate:"required"`
	Params map[string]any `yaml:"params"`
}

// Actor is a named actor configuration. Play seats the actors in order;
// experiments refer to them by name.
type Actor struct {
	Name      string `yaml:"name" validate:"required"`
	Component `yaml:",inline"`
}

type Experiment struct {
	Name     string     `yaml:"name" validate:"required"`
	Games    int        `yaml:"games" validate:"gte=1"`   // Per match up
	Workers  int        `yaml:"workers" validate:"gte=1"` // Games run concurrently
	Output   string     `yaml:"output" validate:"required"`
	MatchUps [][]string `yaml:"match_ups" validate:"dive,min=1"`
}

type Config struct {
	Problem    Component  `yaml:"problem"`
	Seed       uint64     `yaml:"seed"` // 0 seeds from the clock
	MaxSteps   int        `yaml:"max_steps" validate:"gte=1"`
	LogLevel   string     `yaml:"log_level" validate:"oneof=trace debug info warn error disabled"`
	Actors     []Actor    `yaml:"actors" validate:"min=1,unique=Name,dive"`
	Experiment Experiment `yaml:"experiment"`
}

func Default() Config {
	return Config{
		Problem:  Component{Kind: "tictactoe"},
		MaxSteps: engine.MaxSteps,
		LogLevel: "info",
		Actors: []Actor{
			{Name: "mcts", Component: Component{Kind: "mcts", Params: map[string]any{"iterations": 1000}}},
			{Name: "random", Component: Component{Kind: "random"}},
		},
		Experiment: Experiment{
			Name:     "strength",
			Games:    10,
			Workers:  4,
			Output:   "experiments",
			MatchUps: [][]string{{"mcts", "random"}},
		},
	}
}

// Load reads path over the defaults, applies TREESEARCH_* environment
// overrides and validates the result. An empty path only uses the defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := loadFromEnv(&config); err != nil {
		return config, err
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func loadFromEnv(config *Config) error {
	if v := os.Getenv("TREESEARCH_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("TREESEARCH_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TREESEARCH_SEED=%q: %v", ErrInvalid, v, err)
		}
		config.Seed = seed
	}
	return nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, matchUp := range c.Experiment.MatchUps {
		for _, name := range matchUp {
			if _, ok := c.Actor(name); !ok {
				return fmt.Errorf("%w: match up %d names unknown actor %q", ErrInvalid, i, name)
			}
		}
	}
	return nil
}

func (c Config) Actor(name string) (Actor, bool) {
	for _, actor := range c.Actors {
		if actor.Name == name {
			return actor, true
		}
	}
	return Actor{}, false
}
