package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cgpkit/internal/problem"
)

type RawTestCase struct {
	Inputs  []string
	Outputs []string
}

// TestCaseFile is a parsed table: ".i N" and ".o M" set the widths, ".p" or
// ".t" opens the case rows and ".e" closes them.
type TestCaseFile struct {
	Inputs  int
	Outputs int
	Cases   []RawTestCase
}

func ParseTestCases(r io.Reader) (TestCaseFile, error) {
	var (
		file    TestCaseFile
		reading bool
		line    int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := scanner.Text()
		switch {
		case strings.HasPrefix(text, ".i"):
			n, err := directiveValue(text)
			if err != nil {
				return file, fmt.Errorf("%w: line %d: %v", ErrSyntax, line, err)
			}
			file.Inputs = n
		case strings.HasPrefix(text, ".o"):
			n, err := directiveValue(text)
			if err != nil {
				return file, fmt.Errorf("%w: line %d: %v", ErrSyntax, line, err)
			}
			file.Outputs = n
		case strings.HasPrefix(text, ".p"), strings.HasPrefix(text, ".t"):
			reading = true
		case strings.HasPrefix(text, ".e"):
			reading = false
		case reading:
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}
			if len(fields) < file.Inputs+file.Outputs {
				return file, fmt.Errorf("%w: line %d: need %d values, got %d", ErrSyntax, line, file.Inputs+file.Outputs, len(fields))
			}
			file.Cases = append(file.Cases, RawTestCase{
				Inputs:  fields[:file.Inputs],
				Outputs: fields[file.Inputs : file.Inputs+file.Outputs],
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return file, fmt.Errorf("read test cases: %w", err)
	}
	return file, nil
}

func directiveValue(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, fmt.Errorf("directive %q has no value", text)
	}
	return strconv.Atoi(fields[1])
}

// LoadTestCases parses r and replaces the loader's cases with its contents.
func LoadTestCases(r io.Reader, loader problem.CaseLoader) (TestCaseFile, error) {
	file, err := ParseTestCases(r)
	if err != nil {
		return file, err
	}
	loader.SetTopology(file.Inputs, file.Outputs)
	for i, tc := range file.Cases {
		if err := loader.AddTestCaseStrings(tc.Inputs, tc.Outputs); err != nil {
			loader.ClearTestCases()
			return file, fmt.Errorf("test case %d: %w", i, err)
		}
	}
	return file, nil
}
