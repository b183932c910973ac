package metrics

import (
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AgentConfig describes one agent taking part in an experiment.
type AgentConfig struct {
	Name   string
	Kind   string
	Params map[string]any
}

type GameRecord struct {
	ID      string   // uuid
	MatchUp int      // Index of the match up
	Seats   []string // Agent name per seat, in ascending actor id order
	GameMetric
}

type MoveRecord struct {
	Game  string // GameRecord.ID
	Agent string // AgentConfig.Name
	MoveMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) (*Writer, error) {
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// write creates name under the base directory with a header and rows.
func (w *Writer) write(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows) // Flushes
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			config.Name,
			config.Kind,
			formatParams(config.Params),
		})
	}
	return w.write("agent_configs.csv", []string{"name", "kind", "params"}, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "match_up", "seats", "problem", "payoffs", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.ID,
			strconv.Itoa(record.MatchUp),
			strings.Join(record.Seats, "|"),
			record.Problem,
			formatPayoffs(record.Payoffs),
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "actor", "agent", "duration", "episodes", "expansions", "simulation_steps", "is_tree_reused"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Game,
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Actor),
			record.Agent,
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.SimulationSteps),
			strconv.FormatBool(record.IsTreeReused),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func formatParams(params map[string]any) string {
	parts := make([]string, 0, len(params))
	for _, key := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, params[key]))
	}
	return strings.Join(parts, ";")
}

func formatPayoffs(payoffs map[int]float64) string {
	parts := make([]string, 0, len(payoffs))
	for _, actor := range slices.Sorted(maps.Keys(payoffs)) {
		parts = append(parts, fmt.Sprintf("%d:%s", actor, strconv.FormatFloat(payoffs[actor], 'g', -1, 64)))
	}
	return strings.Join(parts, "|")
}
