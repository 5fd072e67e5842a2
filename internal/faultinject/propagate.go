package faultinject

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

// ErrHierarchyLoop is returned when forwarding does not reach a top module
// within as many generations as the design has modules, which only happens
// when a module instantiates itself directly or indirectly.
var ErrHierarchyLoop = errors.New("fault signals do not converge: recursive module instantiation")

// instanceGroup lists the cells of one containing module that instantiate
// the same module type.
type instanceGroup struct {
	module *netlist.Module
	cells  []*netlist.Cell
}

// instanceIndex maps a cell type to its instantiation sites, grouped by
// containing module. Groups and cells keep design order, so walking the
// index visits sites in the same order as a scan of every module's cells.
type instanceIndex map[string][]instanceGroup

func buildInstanceIndex(d *netlist.Design) instanceIndex {
	idx := make(instanceIndex)
	for _, m := range d.Modules() {
		for _, c := range m.Cells() {
			groups := idx[c.Type]
			if n := len(groups); n > 0 && groups[n-1].module == m {
				groups[n-1].cells = append(groups[n-1].cells, c)
			} else {
				groups = append(groups, instanceGroup{module: m, cells: []*netlist.Cell{c}})
			}
			idx[c.Type] = groups
		}
	}
	return idx
}

// propagate drains the pending list generation by generation. Every queued
// fault port is connected at each instantiation of its module; the per
// instance wires of a containing module are bundled into one fi_forward_<n>
// bus which is queued again unless the containing module is top.
//
// The index is built once: propagation adds ports and wires but no cells.
func (r *run) propagate() error {
	if len(r.pending) == 0 {
		return nil
	}
	r.log.Debugf("Updating all modified modules with new fault injection wiring: %d", len(r.pending))
	idx := buildInstanceIndex(r.design)
	limit := len(r.design.Modules())

	parents := netlist.BuildParentGraph(r.design)
	reported := make(map[string]bool)
	for _, sig := range r.pending {
		if reported[sig.Module.Name] {
			continue
		}
		reported[sig.Module.Name] = true
		report := parents.Impact(sig.Module.Name)
		r.result.Impact = append(r.result.Impact, report)
		r.log.WithField("module", sig.Module.Name).Debugf("Fault buses climb through %s", report)
	}

	for generation := 1; len(r.pending) > 0; generation++ {
		if generation > limit {
			return errors.Wrapf(ErrHierarchyLoop, "still %d buses pending after %d generations", len(r.pending), limit)
		}
		queue := r.pending
		r.pending = nil
		r.result.Generations = generation
		r.log.WithField("generation", generation).Debugf("Number of modules to update: %d", len(queue))

		for _, sig := range queue {
			r.forward(idx, sig, generation)
		}
	}
	return nil
}

// forward binds sig's port at every instance of sig.Module.
func (r *run) forward(idx instanceIndex, sig Signal, generation int) {
	log := r.log.WithFields(logrus.Fields{"generation": generation, "module": sig.Module.Name, "wire": sig.Wire.Name})
	log.Debug("Searching for instances of module")

	i := 0
	for _, g := range idx[sig.Module.Name] {
		var bus netlist.SigSpec
		for _, c := range g.cells {
			w := g.module.AddWire(fmt.Sprintf("fi_%s_%d_%s", c.Name, i, sig.Wire.Name), sig.Wire.Width)
			i++
			bus = append(bus, netlist.SigOf(w)...)
			c.SetPort(sig.Wire.Name, netlist.SigOf(w))
			log.Debugf("Instance '%s' in '%s' with width '%d', connecting wire '%s'", c.Name, g.module.Name, w.Width, w.Name)
			r.result.Forwards = append(r.result.Forwards, Forward{
				Generation: generation,
				Module:     g.module.Name,
				Instance:   c.Name,
				Target:     sig.Module.Name,
				Port:       sig.Wire.Name,
				Wire:       w.Name,
				Width:      w.Width,
			})
		}
		if len(bus) == 0 {
			continue
		}
		fwd := g.module.AddWire(fmt.Sprintf("fi_forward_%d", r.forwardCount), len(bus))
		r.forwardCount++
		g.module.Connect(bus, netlist.SigOf(fwd))
		r.classify(g.module, fwd, generation)
	}
}
