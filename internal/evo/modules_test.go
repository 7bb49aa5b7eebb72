package evo

import (
	"errors"
	"testing"

	"cgpkit/internal/resources"
)

func TestNewModulesByName(t *testing.T) {
	params := resources.DefaultParameters()
	for _, name := range MutatorNames() {
		settings := DefaultMutatorSettings()
		settings.Name = name
		m, err := NewMutator[int](settings, nil)
		if err != nil {
			t.Fatalf("mutator %s: %v", name, err)
		}
		if m.Name() != name {
			t.Fatalf("mutator name: got=%s want=%s", m.Name(), name)
		}
	}
	for _, name := range StrategyNames() {
		settings := DefaultStrategySettings()
		settings.Name = name
		s, err := NewStrategy[int](settings, params, nil)
		if err != nil {
			t.Fatalf("strategy %s: %v", name, err)
		}
		if s.Name() != name {
			t.Fatalf("strategy name: got=%s want=%s", s.Name(), name)
		}
	}
}

func TestNewModulesRejectUnknownNames(t *testing.T) {
	if _, err := NewMutator[int](MutatorSettings{Name: "swap"}, nil); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
	if _, err := NewStrategy[int](StrategySettings{Name: "nsga"}, resources.DefaultParameters(), nil); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestNewStrategyPropagatesValidation(t *testing.T) {
	settings := DefaultStrategySettings()
	settings.Lambda = 10
	s, err := NewStrategy[int](settings, resources.DefaultParameters(), nil)
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if s != nil {
		t.Fatal("expected nil strategy on error")
	}
}
