package validator

import (
	"testing"

	"github.com/robert-at-pretension-io/addfi/internal/facts"
)

func TestFactsValidatorAcceptsValidTables(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	tables := facts.Tables{
		Injections: []facts.InjectionRow{{
			Module:   "leaf",
			Cell:     "ff",
			CellType: "$dff",
			Category: "ff",
			Output:   "Q",
			Wire:     "fi_ff_leaf_0",
			Width:    1,
			Gate:     "$auto$addfi$3",
		}},
		Ports: []facts.PortRow{{
			Module: "leaf",
			Wire:   "fi_ff",
			Width:  1,
		}},
		Forwards: []facts.ForwardRow{{
			Module:     "top",
			Instance:   "u_leaf",
			Target:     "leaf",
			Port:       "fi_ff",
			Wire:       "fi_u_leaf_0_fi_ff",
			Width:      1,
			Generation: 1,
		}},
		GeneratorOutputs: []facts.GeneratorOutputRow{{
			TopModule: "top",
			Port:      "fi_0",
			Signal:    "fi_forward_0",
			Width:     1,
		}},
	}

	if err := v.Validate(tables); err != nil {
		t.Fatalf("expected valid tables, got error: %v", err)
	}
	if err := v.ValidateDelta(facts.ComputeDelta(facts.Tables{}, tables)); err != nil {
		t.Fatalf("expected valid delta, got error: %v", err)
	}
}

func TestFactsValidatorRejectsInvalidTables(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	tables := facts.Tables{
		Injections: []facts.InjectionRow{{
			Module:   "leaf",
			Cell:     "ff",
			CellType: "leaf_type",
			Category: "latch",
			Output:   "Q",
			Wire:     "fi_ff_leaf_0",
			Width:    0,
			Gate:     "g",
		}},
	}

	if err := v.Validate(tables); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestFactsValidatorWidthBounds(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	emptyOutput := facts.Tables{
		Injections: []facts.InjectionRow{{
			Module:   "top",
			Cell:     "ff",
			CellType: "$dff",
			Category: "ff",
			Output:   "Q",
			Wire:     "fi_ff_0",
			Width:    0,
			Gate:     "$auto$addfi$3",
		}},
	}
	if err := v.Validate(emptyOutput); err != nil {
		t.Fatalf("zero-width injection should be accepted: %v", err)
	}

	emptyPort := facts.Tables{
		Ports: []facts.PortRow{{Module: "leaf", Wire: "fi_ff", Width: 0}},
	}
	if err := v.Validate(emptyPort); err == nil {
		t.Fatalf("zero-width fault port should be rejected")
	}
}
