package problem

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
)

var ErrInvalidThreshold = errors.New("threshold must be >= 0")

type RegressionSettings struct {
	ErrorThreshold      float64 `json:"error_threshold" toml:"error_threshold" yaml:"error_threshold"`
	PerfectionThreshold float64 `json:"perfection_threshold" toml:"perfection_threshold" yaml:"perfection_threshold"`
	HitsBased           bool    `json:"hits_based" toml:"hits_based" yaml:"hits_based"`
}

func DefaultRegressionSettings() RegressionSettings {
	return RegressionSettings{ErrorThreshold: 0.01, PerfectionThreshold: 0.000001}
}

// SymbolicRegression scores 1 - |error| per output, or one hit per output
// within the error threshold.
type SymbolicRegression struct {
	testCases[float64]
	settings RegressionSettings
}

func NewSymbolicRegression(settings RegressionSettings) (*SymbolicRegression, error) {
	if settings.ErrorThreshold < 0 {
		return nil, fmt.Errorf("error %w, got %g", ErrInvalidThreshold, settings.ErrorThreshold)
	}
	if settings.PerfectionThreshold < 0 {
		return nil, fmt.Errorf("perfection %w, got %g", ErrInvalidThreshold, settings.PerfectionThreshold)
	}
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	return &SymbolicRegression{
		testCases: newTestCases("Symbolic regression", ".dat", function.SymbolicRegression(), parse),
		settings:  settings,
	}, nil
}

func (p *SymbolicRegression) Settings() RegressionSettings { return p.settings }

func (p *SymbolicRegression) Evaluate(pop *genome.Population[float64]) error {
	return p.evaluate(pop, func(got, want float64) float64 {
		diff := math.Abs(got - want)
		if p.settings.HitsBased {
			if diff <= p.settings.ErrorThreshold {
				return 1
			}
			return 0
		}
		return 1 - diff
	})
}

func (p *SymbolicRegression) MaxFitness() float64 {
	return p.caseMaxFitness()
}

func (p *SymbolicRegression) PerfectSolution(pop *genome.Population[float64]) int {
	return p.firstReaching(pop, p.MaxFitness()-p.settings.PerfectionThreshold)
}
