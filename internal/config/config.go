// Package config loads experiment settings files. TOML, YAML and JSON are
// accepted and share one schema.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"cgpkit/internal/evo"
	"cgpkit/internal/problem"
	"cgpkit/internal/resources"
)

var ErrUnsupportedFormat = errors.New("unsupported settings format")

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// GridSettings overrides topology and run plan values. Zero fields leave the
// base parameters untouched.
type GridSettings struct {
	Rows           int   `json:"rows" toml:"rows" yaml:"rows"`
	Columns        int   `json:"columns" toml:"columns" yaml:"columns"`
	Inputs         int   `json:"inputs" toml:"inputs" yaml:"inputs"`
	Outputs        int   `json:"outputs" toml:"outputs" yaml:"outputs"`
	LevelsBack     int   `json:"levels_back" toml:"levels_back" yaml:"levels_back"`
	PopulationSize int   `json:"population_size" toml:"population_size" yaml:"population_size"`
	Generations    int   `json:"generations" toml:"generations" yaml:"generations"`
	Runs           int   `json:"runs" toml:"runs" yaml:"runs"`
	Seed           int64 `json:"seed" toml:"seed" yaml:"seed"`
	ReportInterval int   `json:"report_interval" toml:"report_interval" yaml:"report_interval"`
}

// FunctionSettings toggles functions by name after the parameter file has
// been applied. Disable wins over Enable.
type FunctionSettings struct {
	Enable  []string `json:"enable" toml:"enable" yaml:"enable"`
	Disable []string `json:"disable" toml:"disable" yaml:"disable"`
}

type ChromosomeSettings struct {
	File         string `json:"file" toml:"file" yaml:"file"`
	Index        int    `json:"index" toml:"index" yaml:"index"`
	Indexing     string `json:"indexing" toml:"indexing" yaml:"indexing"`
	AllowForward bool   `json:"allow_forward" toml:"allow_forward" yaml:"allow_forward"`
}

type StoreSettings struct {
	Kind string `json:"kind" toml:"kind" yaml:"kind"`
	Path string `json:"path" toml:"path" yaml:"path"`
}

type Settings struct {
	Problem        string                     `json:"problem" toml:"problem" yaml:"problem"`
	ParametersFile string                     `json:"parameters_file" toml:"parameters_file" yaml:"parameters_file"`
	CasesFile      string                     `json:"cases_file" toml:"cases_file" yaml:"cases_file"`
	Grid           GridSettings               `json:"grid" toml:"grid" yaml:"grid"`
	Strategy       evo.StrategySettings       `json:"strategy" toml:"strategy" yaml:"strategy"`
	Mutator        evo.MutatorSettings        `json:"mutator" toml:"mutator" yaml:"mutator"`
	Regression     problem.RegressionSettings `json:"regression" toml:"regression" yaml:"regression"`
	Functions      FunctionSettings           `json:"functions" toml:"functions" yaml:"functions"`
	Chromosome     ChromosomeSettings         `json:"chromosome" toml:"chromosome" yaml:"chromosome"`
	Store          StoreSettings              `json:"store" toml:"store" yaml:"store"`
	ArtifactsDir   string                     `json:"artifacts_dir" toml:"artifacts_dir" yaml:"artifacts_dir"`
	MetricsFile    string                     `json:"metrics_file" toml:"metrics_file" yaml:"metrics_file"`
}

func Default() Settings {
	return Settings{
		Problem:    "digital",
		Strategy:   evo.DefaultStrategySettings(),
		Mutator:    evo.DefaultMutatorSettings(),
		Regression: problem.DefaultRegressionSettings(),
		Chromosome: ChromosomeSettings{Indexing: "rows"},
		Store:      StoreSettings{Kind: "memory"},
	}
}

// FormatFor picks the decoder from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads path over Default.
func Load(path string) (Settings, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Settings{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	settings, err := Decode(f, format)
	if err != nil {
		return Settings{}, fmt.Errorf("load %s: %w", path, err)
	}
	return settings, nil
}

// Decode reads settings in the given format over Default.
func Decode(r io.Reader, format Format) (Settings, error) {
	settings := Default()
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&settings)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&settings)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatJSON:
		decoder := json.NewDecoder(r)
		decoder.DisallowUnknownFields()
		err = decoder.Decode(&settings)
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Parameters applies the non-zero grid overrides to base and validates the
// result.
func (s Settings) Parameters(base resources.Parameters) (resources.Parameters, error) {
	params := base
	if err := copier.CopyWithOption(&params, &s.Grid, copier.Option{IgnoreEmpty: true}); err != nil {
		return resources.Parameters{}, fmt.Errorf("apply grid settings: %w", err)
	}
	if err := params.Validate(); err != nil {
		return resources.Parameters{}, err
	}
	return params, nil
}
