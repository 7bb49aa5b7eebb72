package resources

import (
	"errors"
	"fmt"
	"math/rand"

	"cgpkit/internal/function"
)

var ErrArity = errors.New("arity must be >= 1: enable at least one function with inputs")

type Config[T any] struct {
	Parameters  Parameters
	Functions   *function.Set[T]
	Orientation Orientation
	// Rand defaults to a source seeded with Parameters.Seed.
	Rand *rand.Rand
}

// Resources binds validated parameters, the derived arity, the function set
// and the single random source every stochastic decision draws from.
type Resources[T any] struct {
	params      Parameters
	arity       int
	functions   *function.Set[T]
	orientation Orientation
	rng         *rand.Rand
}

func New[T any](cfg Config[T]) (*Resources[T], error) {
	if err := cfg.Parameters.Validate(); err != nil {
		return nil, err
	}
	if cfg.Functions == nil {
		return nil, fmt.Errorf("%w: function set is required", ErrInvalidParameters)
	}
	arity := cfg.Functions.MaxArity()
	if arity < 1 {
		return nil, fmt.Errorf("%s: %w", cfg.Functions.Name(), ErrArity)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Parameters.Seed))
	}
	return &Resources[T]{
		params:      cfg.Parameters,
		arity:       arity,
		functions:   cfg.Functions,
		orientation: cfg.Orientation,
		rng:         rng,
	}, nil
}

func (r *Resources[T]) Parameters() Parameters { return r.params }
func (r *Resources[T]) Rows() int { return r.params.Rows }
func (r *Resources[T]) Columns() int { return r.params.Columns }
func (r *Resources[T]) Inputs() int { return r.params.Inputs }
func (r *Resources[T]) Outputs() int { return r.params.Outputs }
func (r *Resources[T]) LevelsBack() int { return r.params.LevelsBack }
func (r *Resources[T]) PopulationSize() int { return r.params.PopulationSize }
func (r *Resources[T]) Nodes() int { return r.params.Nodes() }
func (r *Resources[T]) Arity() int { return r.arity }
func (r *Resources[T]) Orientation() Orientation {
	return r.orientation
}

func (r *Resources[T]) Functions() *function.Set[T] {
	return r.functions
}

// RandomInt draws uniformly from [0, limit).
func (r *Resources[T]) RandomInt(limit int) int {
	return r.rng.Intn(limit)
}

// RandomDouble draws uniformly from [0, limit).
func (r *Resources[T]) RandomDouble(limit float64) float64 {
	return r.rng.Float64() * limit
}

// RandomFunction picks uniformly among the enabled functions.
func (r *Resources[T]) RandomFunction() *function.Function[T] {
	return r.functions.Allowed(r.RandomInt(r.functions.AllowedCount()))
}

func (r *Resources[T]) Function(index int) *function.Function[T] {
	return r.functions.Function(index)
}

func (r *Resources[T]) FunctionIndex(fn *function.Function[T]) int {
	return r.functions.Index(fn)
}
