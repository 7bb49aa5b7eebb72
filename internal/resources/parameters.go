package resources

import (
	"errors"
	"fmt"
)

var ErrInvalidParameters = errors.New("invalid parameters")

// Parameters is the experiment topology and run plan. Every value is fixed for
// the lifetime of a population.
type Parameters struct {
	Rows           int   `json:"rows"`
	Columns        int   `json:"columns"`
	Inputs         int   `json:"inputs"`
	Outputs        int   `json:"outputs"`
	LevelsBack     int   `json:"levels_back"`
	PopulationSize int   `json:"population_size"`
	Generations    int   `json:"generations"`
	Runs           int   `json:"runs"`
	Seed           int64 `json:"seed"`
	ReportInterval int   `json:"report_interval"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Rows:           5,
		Columns:        5,
		Inputs:         3,
		Outputs:        3,
		LevelsBack:     2,
		PopulationSize: 5,
		Generations:    1000000,
		Runs:           5,
		Seed:           1234,
		ReportInterval: 1,
	}
}

func (p Parameters) Nodes() int {
	return p.Rows * p.Columns
}

func (p Parameters) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"rows", p.Rows},
		{"columns", p.Columns},
		{"inputs", p.Inputs},
		{"outputs", p.Outputs},
		{"levels back", p.LevelsBack},
		{"population size", p.PopulationSize},
		{"generations", p.Generations},
		{"runs", p.Runs},
	}
	for _, field := range positive {
		if field.value < 1 {
			return fmt.Errorf("%w: %s must be > 0, got %d", ErrInvalidParameters, field.name, field.value)
		}
	}
	if p.ReportInterval < 0 {
		return fmt.Errorf("%w: report interval must be >= 0, got %d", ErrInvalidParameters, p.ReportInterval)
	}
	return nil
}

// Orientation says which end of the fitness scale wins.
type Orientation int

const (
	HigherIsBetter Orientation = iota
	LowerIsBetter
)

// Better reports whether fitness a beats fitness b strictly.
func (o Orientation) Better(a, b float64) bool {
	if o == LowerIsBetter {
		return a < b
	}
	return a > b
}

func (o Orientation) String() string {
	if o == LowerIsBetter {
		return "lower"
	}
	return "higher"
}
