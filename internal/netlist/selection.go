package netlist

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// ErrUnknownOption is returned when a selection argument looks like an
// option.
var ErrUnknownOption = errors.New("unknown option")

// Selection picks modules and cells by name. A pattern "mod" selects the
// whole module; "mod/cell" selects matching cells of matching modules.
// Patterns use shell-style globs.
type Selection struct {
	patterns []selectPattern
}

type selectPattern struct {
	raw    string
	module glob.Glob
	cell   glob.Glob // nil selects every cell
}

// ParseSelection compiles selection arguments. No arguments select the
// whole design.
func ParseSelection(args []string) (*Selection, error) {
	sel := &Selection{}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return nil, errors.Wrapf(ErrUnknownOption, "%q", arg)
		}
		modPat, cellPat, hasCell := strings.Cut(arg, "/")
		mg, err := glob.Compile(modPat)
		if err != nil {
			return nil, errors.Wrapf(err, "selection %q", arg)
		}
		p := selectPattern{raw: arg, module: mg}
		if hasCell {
			cg, err := glob.Compile(cellPat)
			if err != nil {
				return nil, errors.Wrapf(err, "selection %q", arg)
			}
			p.cell = cg
		}
		sel.patterns = append(sel.patterns, p)
	}
	return sel, nil
}

// All reports whether the selection covers the whole design.
func (s *Selection) All() bool {
	return s == nil || len(s.patterns) == 0
}

// Patterns returns the selection arguments as given.
func (s *Selection) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.raw
	}
	return out
}

// SelectedModules returns the modules with at least one selected object,
// in design order. Blackbox modules are never selected.
func (s *Selection) SelectedModules(d *Design) []*Module {
	var out []*Module
	for _, m := range d.modules {
		if m.Attributes.Bool(AttrBlackbox) {
			continue
		}
		if s.All() || s.matchModule(m.Name) {
			out = append(out, m)
		}
	}
	return out
}

// SelectedCells returns a snapshot of the selected cells of m.
func (s *Selection) SelectedCells(m *Module) []*Cell {
	cells := m.Cells()
	if s.All() {
		return cells
	}
	var out []*Cell
	for _, c := range cells {
		if s.matchCell(m.Name, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selection) matchModule(name string) bool {
	for _, p := range s.patterns {
		if p.module.Match(name) {
			return true
		}
	}
	return false
}

func (s *Selection) matchCell(module, cell string) bool {
	for _, p := range s.patterns {
		if !p.module.Match(module) {
			continue
		}
		if p.cell == nil || p.cell.Match(cell) {
			return true
		}
	}
	return false
}
