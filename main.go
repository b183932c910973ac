package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treesearch/config"
	"treesearch/registry"
)

var (
	configPath  string
	logLevel    string
	metricsAddr string
	games       int
	workers     int

	cfg     config.Config
	catalog = registry.Builtin()

	rootCmd = &cobra.Command{
		Use:               "treesearch",
		Short:             "Monte Carlo tree search over small multi-actor decision problems",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play one match between the configured actors, seated in order",
		RunE:  runPlay, // Defined in play.go
	}

	experimentCmd = &cobra.Command{
		Use:   "experiment",
		Short: "Play the configured match ups many times and write CSV records",
		RunE:  runExperiment, // Defined in play.go
	}

	problemsCmd = &cobra.Command{
		Use:   "problems",
		Short: "List the registered problems, budgets and actors",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "problems: %v\nbudgets:  %v\nactors:   %v\n",
				catalog.Problems.Names(), catalog.Budgets.Names(), catalog.Actors.Names())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides the config")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	experimentCmd.Flags().IntVar(&games, "games", 0, "Games per match up, overrides the config")
	experimentCmd.Flags().IntVar(&workers, "workers", 0, "Games played concurrently, overrides the config")

	rootCmd.AddCommand(playCmd, experimentCmd, problemsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if games > 0 {
		loaded.Experiment.Games = games
	}
	if workers > 0 {
		loaded.Experiment.Workers = workers
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	cfg = loaded

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Msgf("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
