// Package metrics exposes experiment progress as Prometheus collectors. A nil
// *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"cgpkit/internal/stats"
)

const namespace = "cgp"

type Recorder struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	runs        *prometheus.CounterVec
	bestFitness *prometheus.GaugeVec
	activeNodes *prometheus.GaugeVec
	diversity   *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations evaluated.",
		}, []string{"experiment_id"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs by outcome.",
		}, []string{"experiment_id", "outcome"}),
		bestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Best fitness found in the current run.",
		}, []string{"experiment_id"}),
		activeNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_nodes",
			Help:      "Active nodes of the last completed run's result.",
		}, []string{"experiment_id"}),
		diversity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "genotype_diversity",
			Help:      "Mean pairwise gene edit distance of the population.",
		}, []string{"experiment_id"}),
	}
	r.registry.MustRegister(r.generations, r.runs, r.bestFitness, r.activeNodes, r.diversity)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveGeneration(experimentID string, bestFitness float64) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(experimentID).Inc()
	r.bestFitness.WithLabelValues(experimentID).Set(bestFitness)
}

func (r *Recorder) ObserveRun(experimentID string, entry stats.RunEntry) {
	if r == nil {
		return
	}
	outcome := "exhausted"
	if entry.Successful {
		outcome = "solved"
	}
	r.runs.WithLabelValues(experimentID, outcome).Inc()
	r.activeNodes.WithLabelValues(experimentID).Set(float64(entry.ActiveNodes))
}

func (r *Recorder) ObserveDiversity(experimentID string, diversity float64) {
	if r == nil {
		return
	}
	r.diversity.WithLabelValues(experimentID).Set(diversity)
}

// WriteTextfile writes every collected metric to path in the text exposition
// format, atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
