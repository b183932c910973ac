package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Config file should be written")
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		config, err := Load("")

		require.NoError(t, err, "Defaults should validate")
		require.Equal(t, Default(), config, "Empty path should only use defaults")
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
problem:
  kind: pick
  params:
    values: [0.1, 1.0]
seed: 42
log_level: debug
actors:
  - name: deep
    kind: mcts
    params:
      budget: time
      duration: 50ms
      exploration: 1.4
  - name: rand
    kind: random
experiment:
  name: test
  games: 2
  workers: 1
  output: out
  match_ups:
    - [deep, rand]
`)

		config, err := Load(path)

		require.NoError(t, err, "Valid file should load")
		require.Equal(t, "pick", config.Problem.Kind, "Problem should be read")
		require.Equal(t, []any{0.1, 1.0}, config.Problem.Params["values"], "Problem params should be decoded")
		require.Equal(t, uint64(42), config.Seed, "Seed should be read")
		require.Equal(t, "debug", config.LogLevel, "Log level should be read")
		deep, ok := config.Actor("deep")
		require.True(t, ok, "Named actor should be found")
		require.Equal(t, "mcts", deep.Kind, "Inline kind should be decoded")
		require.Equal(t, "50ms", deep.Params["duration"], "Actor params should be decoded")
		require.Equal(t, 2, config.Experiment.Games, "Experiment should be read")
		require.Equal(t, Default().MaxSteps, config.MaxSteps, "Absent keys keep their default")
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TREESEARCH_SEED", "7")
		t.Setenv("TREESEARCH_LOG_LEVEL", "warn")

		config, err := Load("")

		require.NoError(t, err, "Overrides should validate")
		require.Equal(t, uint64(7), config.Seed, "Seed should come from the environment")
		require.Equal(t, "warn", config.LogLevel, "Log level should come from the environment")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

		require.Error(t, err, "Missing file should fail")
	})
}

func TestValidate(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		config := Default()
		config.LogLevel = "loud"

		require.ErrorIs(t, config.Validate(), ErrInvalid, "Unknown log level should fail")
	})

	t.Run("duplicate actor names", func(t *testing.T) {
		config := Default()
		config.Actors = append(config.Actors, config.Actors[0])

		require.ErrorIs(t, config.Validate(), ErrInvalid, "Actor names should be unique")
	})

	t.Run("actor without kind", func(t *testing.T) {
		config := Default()
		config.Actors[0].Kind = ""

		require.ErrorIs(t, config.Validate(), ErrInvalid, "Actor kind is required")
	})

	t.Run("unknown match up actor", func(t *testing.T) {
		config := Default()
		config.Experiment.MatchUps = [][]string{{"mcts", "ghost"}}

		require.ErrorIs(t, config.Validate(), ErrInvalid, "Match ups should name configured actors")
	})

	t.Run("no games", func(t *testing.T) {
		config := Default()
		config.Experiment.Games = 0

		require.ErrorIs(t, config.Validate(), ErrInvalid, "Experiments need games")
	})
}
