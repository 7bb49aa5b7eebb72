package evo

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"cgpkit/internal/resources"
)

const (
	MutatorPercentPoint  = "percent-point"
	MutatorFixedPoint    = "fixed-point"
	MutatorProbabilistic = "probabilistic"

	StrategyMuPlusLambda = "mu-plus-lambda"
	StrategyTournament   = "tournament"
)

var (
	ErrInvalidSettings = errors.New("invalid module settings")
	ErrUnknownModule   = errors.New("unknown module")
)

type MutatorSettings struct {
	Name        string  `json:"name" toml:"name" yaml:"name"`
	Genes       int     `json:"genes" toml:"genes" yaml:"genes"`
	Rate        float64 `json:"rate" toml:"rate" yaml:"rate"`
	Probability float64 `json:"probability" toml:"probability" yaml:"probability"`
}

func DefaultMutatorSettings() MutatorSettings {
	return MutatorSettings{Name: MutatorPercentPoint, Genes: 5, Rate: 10, Probability: 10}
}

type StrategySettings struct {
	Name           string `json:"name" toml:"name" yaml:"name"`
	Mu             int    `json:"mu" toml:"mu" yaml:"mu"`
	Lambda         int    `json:"lambda" toml:"lambda" yaml:"lambda"`
	TournamentSize int    `json:"tournament_size" toml:"tournament_size" yaml:"tournament_size"`
}

func DefaultStrategySettings() StrategySettings {
	return StrategySettings{Name: StrategyMuPlusLambda, Mu: 1, Lambda: 4, TournamentSize: 1}
}

func NewMutator[T any](settings MutatorSettings, logger *slog.Logger) (Mutator[T], error) {
	var (
		mutator Mutator[T]
		err     error
	)
	switch settings.Name {
	case MutatorPercentPoint, "":
		mutator, err = NewPercentPoint[T](settings.Rate, logger)
	case MutatorFixedPoint:
		mutator, err = NewFixedPoint[T](settings.Genes, logger)
	case MutatorProbabilistic:
		mutator, err = NewProbabilistic[T](settings.Probability, logger)
	default:
		return nil, fmt.Errorf("%w: mutator %q", ErrUnknownModule, settings.Name)
	}
	if err != nil {
		return nil, err
	}
	return mutator, nil
}

func NewStrategy[T any](settings StrategySettings, params resources.Parameters, logger *slog.Logger) (Strategy[T], error) {
	var (
		strategy Strategy[T]
		err      error
	)
	switch settings.Name {
	case StrategyMuPlusLambda, "":
		strategy, err = NewMuPlusLambda[T](settings.Mu, settings.Lambda, params.PopulationSize, logger)
	case StrategyTournament:
		strategy, err = NewTournament[T](settings.TournamentSize, params.PopulationSize, logger)
	default:
		return nil, fmt.Errorf("%w: strategy %q", ErrUnknownModule, settings.Name)
	}
	if err != nil {
		return nil, err
	}
	return strategy, nil
}

func MutatorNames() []string {
	names := []string{MutatorPercentPoint, MutatorFixedPoint, MutatorProbabilistic}
	sort.Strings(names)
	return names
}

func StrategyNames() []string {
	names := []string{StrategyMuPlusLambda, StrategyTournament}
	sort.Strings(names)
	return names
}
