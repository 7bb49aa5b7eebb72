package casegen

import (
	"errors"
	"strings"
	"testing"
)

func TestFromCSVSplitsColumns(t *testing.T) {
	table := "t,x,y,out\n0,1,2,3\n\n1, 4, 5, 9\n"
	cases, err := FromCSV(strings.NewReader(table))
	if err != nil {
		t.Fatalf("from csv: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	got := cases[1]
	if len(got.Inputs) != 2 || got.Inputs[0] != 4 || got.Inputs[1] != 5 || len(got.Outputs) != 1 || got.Outputs[0] != 9 {
		t.Fatalf("unexpected case %+v", got)
	}
}

func TestFromCSVRejectsBadTables(t *testing.T) {
	tables := []string{
		"",
		"x,y\n1,2\n",
		"x,out\n1\n",
		"x,out\n1,abc\n",
	}
	for _, table := range tables {
		if _, err := FromCSV(strings.NewReader(table)); err == nil {
			t.Fatalf("expected %q to fail", table)
		}
	}
	if _, err := FromCSV(strings.NewReader("x,y\n")); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}
