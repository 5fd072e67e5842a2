package faultinject

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

// Names of the generated fault generator.
const (
	GeneratorModule   = "figenerator"
	GeneratorInstance = "u_figenerator"
	CombinedPort      = "fi_combined"
)

// generate creates the figenerator module with one output per top-level
// fault bus and instantiates it in the top module. Without top-level buses
// it does nothing. Without a top module it records a warning and leaves the
// buses undriven.
func (r *run) generate() {
	if len(r.topLevel) == 0 {
		return
	}

	top, n := r.design.Top()
	if top == nil {
		r.result.TopModuleMissing = true
		r.warn(logrus.Fields{"signals": len(r.topLevel)}, "No top module found, fault signals are left unconnected")
		return
	}
	if n > 1 {
		r.warn(logrus.Fields{"module": top.Name, "tops": n}, "Several modules are tagged top, using the first one")
	}

	signals := make([]Signal, 0, len(r.topLevel))
	for _, s := range r.topLevel {
		if s.Module != top {
			r.warn(logrus.Fields{"module": s.Module.Name, "wire": s.Wire.Name},
				"Fault signal belongs to another top module and is left unconnected")
			continue
		}
		signals = append(signals, s)
	}
	if len(signals) == 0 {
		return
	}

	r.log.WithField("module", top.Name).Debugf("Number of fault injection signals: %d", len(signals))
	gen := r.design.AddModule(GeneratorModule)

	type portPair struct {
		port   *netlist.Wire
		signal *netlist.Wire
	}
	var (
		passing netlist.SigSpec
		pairs   []portPair
		total   int
	)
	info := &Generator{Module: GeneratorModule, Instance: GeneratorInstance, TopModule: top.Name}
	for i, s := range signals {
		total += s.Wire.Width
		out := gen.AddWire(fmt.Sprintf("fi_%d", i), s.Wire.Width)
		out.PortOutput = true
		passing = append(passing, netlist.SigOf(out)...)
		pairs = append(pairs, portPair{port: out, signal: s.Wire})
		info.Outputs = append(info.Outputs, GeneratorOutput{Port: out.Name, Signal: s.Wire.Name, Width: out.Width})
	}

	var combined *netlist.Wire
	if r.opts.AddInput {
		r.log.Debug("Adding combined input port to figenerator")
		combined = gen.AddWire(CombinedPort, total)
		combined.PortInput = true
		gen.Connect(passing, netlist.SigOf(combined))
		info.CombinedWidth = total
	}
	gen.FixupPorts()

	inst := top.AddCell(GeneratorInstance, GeneratorModule)
	for _, p := range pairs {
		r.log.Debugf("Connecting signal '%s' to port '%s'", p.signal.Name, p.port.Name)
		inst.SetPort(p.port.Name, netlist.SigOf(p.signal))
	}
	if combined != nil {
		topIn := top.AddWire(CombinedPort, total)
		topIn.PortInput = true
		inst.SetPort(combined.Name, netlist.SigOf(topIn))
		top.FixupPorts()
	}
	r.result.Generator = info
}
