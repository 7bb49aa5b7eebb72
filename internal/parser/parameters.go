// Package parser reads and writes the flat positional text formats: .par
// parameter files, test-case tables and .chr chromosomes.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"cgpkit/internal/function"
	"cgpkit/internal/resources"
)

var ErrSyntax = errors.New("syntax error")

var digits = regexp.MustCompile(`[0-9]+`)

// ParseParameters applies every recognised "<value> <key>" line of a .par
// file on top of params. Unknown keys are ignored.
func ParseParameters(r io.Reader, params resources.Parameters) (resources.Parameters, error) {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		var target *int
		switch fields[1] {
		case "population_size":
			target = &params.PopulationSize
		case "num_generations":
			target = &params.Generations
		case "num_runs_total":
			target = &params.Runs
		case "num_rows":
			target = &params.Rows
		case "num_cols":
			target = &params.Columns
		case "levels_back":
			target = &params.LevelsBack
		case "report_interval":
			target = &params.ReportInterval
		case "global_seed":
			seed, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return params, fmt.Errorf("%w: line %d: global_seed %q", ErrSyntax, line, fields[0])
			}
			params.Seed = seed
			continue
		default:
			continue
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil {
			return params, fmt.Errorf("%w: line %d: %s %q", ErrSyntax, line, fields[1], fields[0])
		}
		*target = v
	}
	if err := scanner.Err(); err != nil {
		return params, fmt.Errorf("read parameters: %w", err)
	}
	return params, nil
}

// ParseFunctions enables or disables functions listed in a .par file. A line
// ending in a digit toggles the function numbered by its last number: enable
// when its first number is non-zero, disable when zero. Indices past the end
// of the set are skipped with a warning.
func ParseFunctions[T any](r io.Reader, set *function.Set[T], logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	scanner := bufio.NewScanner(r)
	excess := false
	for scanner.Scan() {
		text := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if text == "" || !unicode.IsDigit(rune(text[len(text)-1])) {
			continue
		}
		numbers := digits.FindAllString(text, -1)
		index, err := strconv.Atoi(numbers[len(numbers)-1])
		if err != nil {
			return fmt.Errorf("%w: function index in %q", ErrSyntax, text)
		}
		if index >= set.TotalCount() {
			excess = true
			continue
		}
		flag, err := strconv.Atoi(numbers[0])
		if err != nil {
			return fmt.Errorf("%w: function flag in %q", ErrSyntax, text)
		}
		if flag != 0 {
			err = set.EnableFunction(index)
			logger.Debug("enabled function", "function", set.Function(index))
		} else {
			err = set.DisableFunction(index)
			logger.Debug("disabled function", "function", set.Function(index))
		}
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read functions: %w", err)
	}
	if excess {
		logger.Warn("parameter file lists more functions than the function set", "set", set.Name(), "functions", set.TotalCount())
	}
	return nil
}
