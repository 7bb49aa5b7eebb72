package casegen

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FromCSV reads cases from a table with a header row. Columns whose header
// starts with "out" or "class" are outputs; a "t" column is skipped and every
// other column is an input. Blank records are ignored.
func FromCSV(r io.Reader) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: table is empty", ErrInvalidSpec)
	}
	if err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}
	kinds := make([]columnKind, len(header))
	inputs, outputs := 0, 0
	for i, name := range header {
		kinds[i] = kindOf(name)
		switch kinds[i] {
		case inputColumn:
			inputs++
		case outputColumn:
			outputs++
		}
	}
	if inputs == 0 || outputs == 0 {
		return nil, fmt.Errorf("%w: table needs input and output columns, header %v", ErrInvalidSpec, header)
	}

	var cases []Case
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table row %d: %w", row, err)
		}
		if blank(record) {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d columns, header has %d", ErrInvalidSpec, row, len(record), len(header))
		}
		c := Case{Inputs: make([]float64, 0, inputs), Outputs: make([]float64, 0, outputs)}
		for i, raw := range record {
			if kinds[i] == skippedColumn {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("parse table row %d column %s: %w", row, header[i], err)
			}
			if kinds[i] == outputColumn {
				c.Outputs = append(c.Outputs, v)
			} else {
				c.Inputs = append(c.Inputs, v)
			}
		}
		if len(cases) == MaxCases {
			return nil, fmt.Errorf("%w: more than %d cases", ErrInvalidSpec, MaxCases)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

type columnKind int

const (
	inputColumn columnKind = iota
	outputColumn
	skippedColumn
)

func kindOf(header string) columnKind {
	key := strings.ToLower(strings.TrimSpace(header))
	switch {
	case key == "t":
		return skippedColumn
	case strings.HasPrefix(key, "out"), strings.HasPrefix(key, "class"):
		return outputColumn
	}
	return inputColumn
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
