package faultinject

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

// Primary output port names, in lookup order.
const (
	OutputFF   = "Q"
	OutputComb = "Y"
)

// injectModule inserts fault cells for the given cells of m and bundles the
// new control wires into the module's fault ports. The fault index is shared
// between both categories and advances for every candidate cell, including
// cells skipped for lack of a primary output.
func (r *run) injectModule(m *netlist.Module, cells []*netlist.Cell) {
	var ffBus, combBus netlist.SigSpec
	faultNum := 0
	for _, c := range cells {
		// module instances are handled through their own module
		if netlist.IsPublic(c.Type) {
			continue
		}
		ff := netlist.IsBuiltinFF(c.Type)
		if ff && r.opts.InjectFF {
			r.insertFault(m, c, faultNum, &ffBus)
			faultNum++
		}
		if !ff && r.opts.InjectComb {
			r.insertFault(m, c, faultNum, &combBus)
			faultNum++
		}
	}
	r.addFaultPort(m, ffBus, PortFF)
	r.addFaultPort(m, combBus, PortComb)
}

// insertFault adds the control wire for c to bus and splices the combining
// cell into c's primary output. Cells without Q or Y are left alone.
func (r *run) insertFault(m *netlist.Module, c *netlist.Cell, faultNum int, bus *netlist.SigSpec) {
	var output string
	switch {
	case c.HasPort(OutputFF):
		output = OutputFF
	case c.HasPort(OutputComb):
		output = OutputComb
	default:
		r.log.WithFields(logrus.Fields{"module": m.Name, "cell": c.Name}).
			Debugf("Skipping cell of type '%s' without primary output", c.Type)
		return
	}
	sig := c.Port(output)
	r.log.WithFields(logrus.Fields{"module": m.Name, "cell": c.Name}).
		Debugf("Inserting fault injection %s to cell of type '%s' with size '%d'", r.opts.Gate, c.Type, len(sig))

	category := CategoryComb
	if output == OutputFF {
		category = CategoryFF
	}
	s := m.AddWire(faultWireName(category, m, faultNum), len(sig))
	*bus = append(*bus, netlist.SigOf(s)...)

	gate := r.spliceCombineCell(m, c, output, sig, s)
	r.result.Injections = append(r.result.Injections, Injection{
		Module:   m.Name,
		Cell:     c.Name,
		CellType: c.Type,
		Category: category,
		Output:   output,
		Wire:     s.Name,
		Width:    s.Width,
		Gate:     gate.Name,
	})
}

// faultWireName returns fi_<category>_<n> in a top module and
// fi_<category>_<module>_<n> elsewhere.
func faultWireName(category Category, m *netlist.Module, faultNum int) string {
	if m.IsTop() {
		return fmt.Sprintf("fi_%s_%d", category, faultNum)
	}
	return fmt.Sprintf("fi_%s_%s_%d", category, m.Name, faultNum)
}

// spliceCombineCell moves c's output onto a fresh wire and drives the
// original net through the combining gate:
//
//	c.output -> in ─┐
//	                gate -> out -> original net
//	fault -> ───────┘
func (r *run) spliceCombineCell(m *netlist.Module, c *netlist.Cell, output string, sig netlist.SigSpec, fault *netlist.Wire) *netlist.Cell {
	in := m.AddWire(r.design.NewID(m), len(sig))
	c.SetPort(output, netlist.SigOf(in))

	out := m.AddWire(r.design.NewID(m), len(sig))
	m.Connect(sig, netlist.SigOf(out))

	return r.opts.Gate.add(m, r.design.NewID(m), netlist.SigOf(fault), netlist.SigOf(in), netlist.SigOf(out))
}
