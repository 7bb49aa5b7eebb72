package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GridRecord is the topology and run budget an experiment was started with.
type GridRecord struct {
	Rows           int   `json:"rows"`
	Columns        int   `json:"columns"`
	Inputs         int   `json:"inputs"`
	Outputs        int   `json:"outputs"`
	LevelsBack     int   `json:"levels_back"`
	Arity          int   `json:"arity"`
	PopulationSize int   `json:"population_size"`
	Generations    int   `json:"generations"`
	Runs           int   `json:"runs"`
	Seed           int64 `json:"seed"`
}

type ExperimentRecord struct {
	VersionedRecord
	ID             string     `json:"id"`
	Problem        string     `json:"problem"`
	Strategy       string     `json:"strategy"`
	Mutator        string     `json:"mutator"`
	Grid           GridRecord `json:"grid"`
	Functions      []string   `json:"functions"`
	Indexing       string     `json:"indexing"`
	CreatedAtUTC   string     `json:"created_at_utc"`
	CompletedRuns  int        `json:"completed_runs"`
	SuccessfulRuns int        `json:"successful_runs"`
	HighestFitness float64    `json:"highest_fitness"`
}

// RunRecord is the outcome of one run together with the flat chromosome text
// of the fittest chromosome when the run ended.
type RunRecord struct {
	VersionedRecord
	ExperimentID string  `json:"experiment_id"`
	Run          int     `json:"run"`
	Generation   int     `json:"generation"`
	Fitness      float64 `json:"fitness"`
	ActiveNodes  int     `json:"active_nodes"`
	Successful   bool    `json:"successful"`
	Chromosome   string  `json:"chromosome"`
}
