package faultinject

import (
	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

// Names of the per-module fault buses.
const (
	PortFF   = "fi_ff"
	PortComb = "fi_comb"
)

// addFaultPort bundles bus into a new wire called name. Modules without
// injected cells are left untouched.
func (r *run) addFaultPort(m *netlist.Module, bus netlist.SigSpec, name string) {
	if len(bus) == 0 {
		return
	}
	w := m.AddWire(name, len(bus))
	m.Connect(bus, netlist.SigOf(w))
	r.log.WithFields(logrus.Fields{"module": m.Name, "wire": w.Name}).
		Debugf("Creating module local fault input with size %d", w.Width)
	r.classify(m, w, 0)
}

// classify makes w an input port of a non-top module and queues it for
// forwarding, or registers it as a top-level signal for the generator.
func (r *run) classify(m *netlist.Module, w *netlist.Wire, generation int) {
	top := m.IsTop()
	if top {
		r.log.WithFields(logrus.Fields{"module": m.Name, "wire": w.Name}).Debug("New fault signal at top level")
		r.topLevel = append(r.topLevel, Signal{Module: m, Wire: w})
	} else {
		w.PortInput = true
		m.FixupPorts()
		r.log.WithFields(logrus.Fields{"module": m.Name, "wire": w.Name}).Debug("Adding signal to forward list")
		r.pending = append(r.pending, Signal{Module: m, Wire: w})
	}
	r.result.Ports = append(r.result.Ports, FaultPort{
		Module:     m.Name,
		Wire:       w.Name,
		Width:      w.Width,
		Top:        top,
		Generation: generation,
	})
}
