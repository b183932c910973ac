package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	iterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treesearch_iterations_total",
		Help: "Total search iterations completed",
	})

	expansionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treesearch_expansions_total",
		Help: "Total tree nodes created by expansion",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "treesearch_search_duration_seconds",
		Help:    "Wall-clock duration of one search",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	})
)

type SearchMetric struct {
	Duration        time.Duration
	Episodes        int
	Expansions      int
	SimulationSteps int
	IsTreeReused    bool
}

type MoveMetric struct {
	Step  int
	Actor int // Actor ID
	SearchMetric
}

type GameMetric struct {
	Problem    string
	Payoffs    map[int]float64 // Keyed by actor ID
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

type Collector interface {
	Start()
	SetTreeReused(value bool)
	AddEpisode()
	AddExpansion()
	AddSimulationSteps(steps int)
	Complete() SearchMetric
}

type collector struct {
	startTime       time.Time
	episodes        atomic.Int32
	expansions      atomic.Int32
	simulationSteps atomic.Int64
	isTreeReused    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReused(value bool) {
	m.isTreeReused.Store(value)
}

// Start resets the counters of the previous search. Tree reuse is set
// separately, before or after Start.
func (m *collector) Start() {
	m.startTime = time.Now()
	m.episodes.Store(0)
	m.expansions.Store(0)
	m.simulationSteps.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
	iterationsTotal.Inc()
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
	expansionsTotal.Inc()
}

func (m *collector) AddSimulationSteps(steps int) {
	m.simulationSteps.Add(int64(steps))
}

func (m *collector) Complete() SearchMetric {
	duration := time.Since(m.startTime)
	searchDuration.Observe(duration.Seconds())
	return SearchMetric{
		Duration:        duration,
		Episodes:        int(m.episodes.Load()),
		Expansions:      int(m.expansions.Load()),
		SimulationSteps: int(m.simulationSteps.Load()),
		IsTreeReused:    m.isTreeReused.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                   {}
func (m *dummyCollector) SetTreeReused(value bool) {}
func (m *dummyCollector) AddEpisode()              {}
func (m *dummyCollector) AddExpansion()            {}
func (m *dummyCollector) AddSimulationSteps(int)   {}
func (m *dummyCollector) Complete() SearchMetric   { return SearchMetric{} }
