// Package metrics exports solver activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

const namespace = "hexwfc"

// Run outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Recorder counts placements and engine runs. It is a wfc.PlacementSink;
// hook ObserveRunStart and ObserveRun to the engine callbacks.
type Recorder struct {
	registry *prometheus.Registry

	placements      *prometheus.CounterVec
	runs            *prometheus.CounterVec
	ignored         prometheus.Counter
	failures        prometheus.Counter
	clustersPlaced  prometheus.Counter
	clusterFailures prometheus.Counter
	propagated      prometheus.Counter
	runDuration     prometheus.Histogram
	lastSeed        prometheus.Gauge

	mu      sync.Mutex
	started time.Time
}

var _ wfc.PlacementSink = (*Recorder)(nil)

// NewRecorder creates a recorder on its own registry, so several recorders
// can coexist in one process.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Cells assigned a tile, by tier.",
		}, []string{"tier"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Engine runs by outcome.",
		}, []string{"outcome"}),
		ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_cells_total",
			Help:      "Cells left unassigned and marked ignored.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unsatisfiable_cells_total",
			Help:      "Unsatisfiable cell failures recorded in results.",
		}),
		clustersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clusters_placed_total",
			Help:      "Clusters collapsed as a whole.",
		}),
		clusterFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_failures_total",
			Help:      "Clusters skipped after a failed collapse.",
		}),
		propagated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propagated_placements_total",
			Help:      "Placements made by neighbor propagation.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one engine run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		lastSeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_seed",
			Help:      "Seed of the most recent run.",
		}),
	}
	r.registry.MustRegister(r.placements, r.runs, r.ignored, r.failures,
		r.clustersPlaced, r.clusterFailures, r.propagated, r.runDuration, r.lastSeed)
	return r
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// OnCellResolved counts one placement.
func (r *Recorder) OnCellResolved(addr hexgrid.Address, _ string, _ int) {
	r.placements.WithLabelValues(strconv.Itoa(addr.Tier)).Inc()
}

// ObserveRunStart starts timing a run.
func (r *Recorder) ObserveRunStart(_ int, seed int64) {
	r.mu.Lock()
	r.started = time.Now()
	r.mu.Unlock()
	r.lastSeed.Set(float64(seed))
}

// ObserveRun records the outcome of a finished run and its nested results.
func (r *Recorder) ObserveRun(_ int, res *wfc.Result, err error) {
	r.mu.Lock()
	if !r.started.IsZero() {
		r.runDuration.Observe(time.Since(r.started).Seconds())
		r.started = time.Time{}
	}
	r.mu.Unlock()

	r.runs.WithLabelValues(Outcome(res, err)).Inc()
	if res == nil {
		return
	}
	res.Walk(func(n *wfc.Result) {
		r.ignored.Add(float64(len(n.Ignored)))
		r.failures.Add(float64(len(n.Failures)))
		r.clustersPlaced.Add(float64(n.ClustersPlaced))
		r.clusterFailures.Add(float64(len(n.ClusterFailures)))
		r.propagated.Add(float64(n.PropagatedPlaced))
	})
}

// Outcome classifies a run for the outcome label.
func Outcome(res *wfc.Result, err error) string {
	switch {
	case err != nil || res == nil:
		return OutcomeFailed
	case res.Success():
		return OutcomeSuccess
	default:
		return OutcomePartial
	}
}
