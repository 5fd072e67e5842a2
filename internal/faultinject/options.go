package faultinject

import (
	"github.com/pkg/errors"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

// GateType selects the cell combining a fault control bit with the signal it
// perturbs.
type GateType string

const (
	GateXor GateType = "xor"
	GateAnd GateType = "and"
	GateOr  GateType = "or"
)

var (
	// ErrMissingType is returned when -type is the last argument.
	ErrMissingType = errors.New("option -type requires an additional argument")
	// ErrInvalidType is returned for a -type value other than xor, and or or.
	ErrInvalidType = errors.New("invalid fault cell type")
)

// ParseGateType parses "xor", "and" or "or".
func ParseGateType(s string) (GateType, error) {
	switch g := GateType(s); g {
	case GateXor, GateAnd, GateOr:
		return g, nil
	}
	return "", errors.Wrapf(ErrInvalidType, "%q (possible values are 'or', 'and' and 'xor')", s)
}

// CellType returns the builtin cell type implementing g.
func (g GateType) CellType() string {
	switch g {
	case GateAnd:
		return netlist.TypeAnd
	case GateOr:
		return netlist.TypeOr
	default:
		return netlist.TypeXor
	}
}

func (g GateType) add(m *netlist.Module, name string, a, b, y netlist.SigSpec) *netlist.Cell {
	switch g {
	case GateAnd:
		return m.AddAnd(name, a, b, y)
	case GateOr:
		return m.AddOr(name, a, b, y)
	default:
		return m.AddXor(name, a, b, y)
	}
}

// Options configures a pass run.
type Options struct {
	// InjectFF inserts fault cells on flip-flop outputs.
	InjectFF bool
	// InjectComb inserts fault cells on combinational cell outputs.
	InjectComb bool
	// AddInput adds the combined fi_combined input to the generator and the
	// top module.
	AddInput bool
	// Gate is the combining cell type.
	Gate GateType
	// Selection restricts the modules and cells the pass injects into. Nil
	// selects the whole design.
	Selection *netlist.Selection
}

// DefaultOptions enables everything with XOR combining cells.
func DefaultOptions() Options {
	return Options{
		InjectFF:   true,
		InjectComb: true,
		AddInput:   true,
		Gate:       GateXor,
	}
}

// Validate checks option values.
func (o Options) Validate() error {
	_, err := ParseGateType(string(o.Gate))
	return err
}

// ParseArgs applies pass arguments on top of base:
//
//	[-no-ff] [-no-comb] [-no-add-input] [-type <xor|and|or>] [selection...]
//
// The first argument that is not a pass option ends option parsing; it and
// everything after it is parsed as a selection. When no selection is given
// the selection of base is kept.
func ParseArgs(args []string, base Options) (Options, error) {
	opts := base
	argidx := 0
options:
	for ; argidx < len(args); argidx++ {
		switch args[argidx] {
		case "-no-ff":
			opts.InjectFF = false
		case "-no-comb":
			opts.InjectComb = false
		case "-no-add-input":
			opts.AddInput = false
		case "-type":
			argidx++
			if argidx >= len(args) {
				return base, ErrMissingType
			}
			gate, err := ParseGateType(args[argidx])
			if err != nil {
				return base, err
			}
			opts.Gate = gate
		default:
			break options
		}
	}

	if rest := args[argidx:]; len(rest) > 0 {
		sel, err := netlist.ParseSelection(rest)
		if err != nil {
			return base, err
		}
		opts.Selection = sel
	}
	return opts, nil
}
