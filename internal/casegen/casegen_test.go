package casegen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cgpkit/internal/parser"
)

func TestGenerateGrid(t *testing.T) {
	cases, err := Generate(context.Background(), Spec{
		Expressions: []string{"x*x + y", "pow(x, 2)"},
		Variables:   []string{"x", "y"},
		From:        -1,
		To:          1,
		Step:        0.5,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(cases) != 25 {
		t.Fatalf("expected 5x5 grid, got %d cases", len(cases))
	}
	last := cases[len(cases)-1]
	if last.Inputs[0] != 1 || last.Inputs[1] != 1 || last.Outputs[0] != 2 || last.Outputs[1] != 1 {
		t.Fatalf("unexpected last case: %+v", last)
	}
	if second := cases[1]; second.Inputs[0] != -1 || second.Inputs[1] != -0.5 {
		t.Fatalf("expected last variable to vary fastest, got %+v", second)
	}
}

func TestGenerateRejectsBadSpecs(t *testing.T) {
	bad := []Spec{
		{Variables: []string{"x"}, From: 0, To: 1, Step: 1},
		{Expressions: []string{"x"}, From: 0, To: 1, Step: 1},
		{Expressions: []string{"x"}, Variables: []string{"x"}, From: 0, To: 1, Step: 0},
		{Expressions: []string{"x"}, Variables: []string{"x"}, From: 2, To: 1, Step: 1},
		{Expressions: []string{"x"}, Variables: []string{"x", "y", "z"}, From: 0, To: 100, Step: 1},
	}
	for i, spec := range bad {
		if _, err := Generate(context.Background(), spec); !errors.Is(err, ErrInvalidSpec) {
			t.Fatalf("spec %d: expected ErrInvalidSpec, got %v", i, err)
		}
	}
	if _, err := Generate(context.Background(), Spec{Expressions: []string{"x +"}, Variables: []string{"x"}, To: 1, Step: 1}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteProducesParsableTable(t *testing.T) {
	cases, err := Generate(context.Background(), Spec{
		Expressions: []string{"sin(x) + 1"},
		Variables:   []string{"x"},
		From:        0,
		To:          3,
		Step:        1,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var b strings.Builder
	if err := Write(&b, cases); err != nil {
		t.Fatalf("write: %v", err)
	}
	file, err := parser.ParseTestCases(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if file.Inputs != 1 || file.Outputs != 1 || len(file.Cases) != 4 {
		t.Fatalf("unexpected table: %+v", file)
	}
	if file.Cases[0].Outputs[0] != "1" {
		t.Fatalf("expected sin(0)+1 = 1, got %s", file.Cases[0].Outputs[0])
	}
}
