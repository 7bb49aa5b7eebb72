package storage

import (
	"context"

	"cgpkit/internal/model"
)

// Store persists experiments and the runs logged against them.
type Store interface {
	Init(ctx context.Context) error
	SaveExperiment(ctx context.Context, experiment model.ExperimentRecord) error
	GetExperiment(ctx context.Context, id string) (model.ExperimentRecord, bool, error)
	// ListExperiments returns experiments newest first.
	ListExperiments(ctx context.Context) ([]model.ExperimentRecord, error)
	DeleteExperiment(ctx context.Context, id string) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	// GetRuns returns the runs of an experiment ordered by run number.
	GetRuns(ctx context.Context, experimentID string) ([]model.RunRecord, bool, error)
}
