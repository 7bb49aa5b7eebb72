// Package stats records the outcome of each run of an experiment and derives
// aggregate statistics, population diversity and on-disk artifacts from them.
package stats

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// RunEntry is the outcome of one run. Generation is the generation in which
// the solution was found for successful runs, or the last generation that
// improved the best fitness otherwise.
type RunEntry struct {
	Run         int     `json:"run"`
	Generation  int     `json:"generation"`
	Fitness     float64 `json:"fitness"`
	ActiveNodes int     `json:"active_nodes"`
	Successful  bool    `json:"successful"`
}

// Logger accumulates run entries. It is safe for concurrent use.
type Logger struct {
	mu      sync.RWMutex
	entries []RunEntry
}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) LogRun(entry RunEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *Logger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of the logged runs in logging order.
func (l *Logger) Entries() []RunEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]RunEntry(nil), l.entries...)
}

// Summary aggregates the logged runs. Standard deviations are population
// deviations. Averages over successful runs are 0 when no run succeeded.
type Summary struct {
	Runs                         int     `json:"runs"`
	AverageFitness               float64 `json:"average_fitness"`
	FitnessStdDev                float64 `json:"fitness_std_dev"`
	AverageActiveNodes           float64 `json:"average_active_nodes"`
	ActiveNodesStdDev            float64 `json:"active_nodes_std_dev"`
	AverageGenerations           float64 `json:"average_generations"`
	GenerationsStdDev            float64 `json:"generations_std_dev"`
	HighestFitness               float64 `json:"highest_fitness"`
	LowestFitness                float64 `json:"lowest_fitness"`
	SuccessfulRuns               int     `json:"successful_runs"`
	SuccessRate                  float64 `json:"success_rate"`
	AverageSuccessfulGenerations float64 `json:"average_successful_generations"`
	SuccessfulGenerationsStdDev  float64 `json:"successful_generations_std_dev"`
	AverageSuccessfulActiveNodes float64 `json:"average_successful_active_nodes"`
	SuccessfulActiveNodesStdDev  float64 `json:"successful_active_nodes_std_dev"`
}

func (l *Logger) Summary() Summary {
	entries := l.Entries()
	s := Summary{Runs: len(entries)}
	if len(entries) == 0 {
		return s
	}

	fitness := make([]float64, len(entries))
	active := make([]float64, len(entries))
	generations := make([]float64, len(entries))
	var successGenerations, successActive []float64
	s.HighestFitness, s.LowestFitness = math.Inf(-1), math.Inf(1)
	for i, e := range entries {
		fitness[i] = e.Fitness
		active[i] = float64(e.ActiveNodes)
		generations[i] = float64(e.Generation)
		s.HighestFitness = max(s.HighestFitness, e.Fitness)
		s.LowestFitness = min(s.LowestFitness, e.Fitness)
		if e.Successful {
			successGenerations = append(successGenerations, float64(e.Generation))
			successActive = append(successActive, float64(e.ActiveNodes))
		}
	}

	s.AverageFitness, s.FitnessStdDev = meanStdDev(fitness)
	s.AverageActiveNodes, s.ActiveNodesStdDev = meanStdDev(active)
	s.AverageGenerations, s.GenerationsStdDev = meanStdDev(generations)
	s.SuccessfulRuns = len(successGenerations)
	s.SuccessRate = float64(s.SuccessfulRuns) / float64(len(entries))
	s.AverageSuccessfulGenerations, s.SuccessfulGenerationsStdDev = meanStdDev(successGenerations)
	s.AverageSuccessfulActiveNodes, s.SuccessfulActiveNodesStdDev = meanStdDev(successActive)
	return s
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}
