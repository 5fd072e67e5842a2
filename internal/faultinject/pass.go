// Package faultinject splices fault control cells into a netlist and wires
// the control signals up the module hierarchy to a generated fault
// generator module instantiated in the top module.
//
// The pass runs in four steps over one design:
//
//  1. every selected builtin cell gets its primary output (Q, else Y)
//     routed through a combining gate driven by a new fault control wire;
//  2. the control wires of a module are bundled into the fi_ff and fi_comb
//     buses, which become input ports unless the module is top;
//  3. each new port is forwarded to every instantiation site, generation by
//     generation, until only top modules are left;
//  4. the buses that reached the top are driven by the figenerator module.
//
// The design is mutated in place. There is no rollback: if a step fails the
// design keeps every object created before the failure.
package faultinject

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

// Category tells flip-flop faults from combinational ones.
type Category string

const (
	CategoryFF   Category = "ff"
	CategoryComb Category = "comb"
)

// Signal refers to a wire together with the module declaring it.
type Signal struct {
	Module *netlist.Module
	Wire   *netlist.Wire
}

// Injection records one combining cell spliced into a cell output.
type Injection struct {
	Module   string   `json:"module"`
	Cell     string   `json:"cell"`
	CellType string   `json:"cell_type"`
	Category Category `json:"category"`
	Output   string   `json:"output"`
	Wire     string   `json:"wire"`
	Width    int      `json:"width"`
	Gate     string   `json:"gate"`
}

// FaultPort records a fault bus created in a module. Generation is 0 for
// the per-module buses and the propagation round otherwise.
type FaultPort struct {
	Module     string `json:"module"`
	Wire       string `json:"wire"`
	Width      int    `json:"width"`
	Top        bool   `json:"top"`
	Generation int    `json:"generation"`
}

// Forward records the wire bound to a fault port of one instance.
type Forward struct {
	Generation int    `json:"generation"`
	Module     string `json:"module"`
	Instance   string `json:"instance"`
	Target     string `json:"target"`
	Port       string `json:"port"`
	Wire       string `json:"wire"`
	Width      int    `json:"width"`
}

// GeneratorOutput is one output of the fault generator.
type GeneratorOutput struct {
	Port   string `json:"port"`
	Signal string `json:"signal"`
	Width  int    `json:"width"`
}

// Generator describes the generated fault generator and its instance.
type Generator struct {
	Module        string            `json:"module"`
	Instance      string            `json:"instance"`
	TopModule     string            `json:"top_module"`
	Outputs       []GeneratorOutput `json:"outputs"`
	CombinedWidth int               `json:"combined_width,omitempty"`
}

// Result summarizes what a run added to the design.
type Result struct {
	Injections  []Injection `json:"injections"`
	Ports       []FaultPort `json:"ports"`
	Forwards    []Forward   `json:"forwards"`
	Generations int         `json:"generations"`
	Generator   *Generator  `json:"generator,omitempty"`
	// TopModuleMissing is set when fault buses reached a top-tagged module
	// but no top module could be chosen to host the generator.
	TopModuleMissing bool     `json:"top_module_missing,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`

	// Impact lists, for every module that received fault ports during
	// injection, the modules above it that the buses climb through.
	Impact []netlist.ImpactReport `json:"impact,omitempty"`

	// TopSignals are the buses that reached a top module, in arrival order.
	TopSignals []Signal `json:"-"`
}

// Pass runs fault injection over a design.
type Pass struct {
	Options Options
	Log     logrus.FieldLogger
	// TimingPath, when set, receives JSONL phase timings. Falls back to
	// the ADDFI_TIMING_JSONL environment variable.
	TimingPath string
}

// New returns a pass using the standard logrus logger.
func New(opts Options) *Pass {
	return &Pass{Options: opts, Log: logrus.StandardLogger()}
}

// run is the state of one pass invocation. The two signal lists are the
// only derived state kept between steps.
type run struct {
	design *netlist.Design
	opts   Options
	log    logrus.FieldLogger

	// pending holds forwarding buses not yet wired to their instances.
	pending []Signal
	// topLevel holds buses that reached a top module.
	topLevel []Signal

	forwardCount int
	result       *Result
}

// Run executes the pass on d. On error the returned Result describes the
// changes made before the failure; they are not undone.
func (p *Pass) Run(d *netlist.Design) (res *Result, err error) {
	if err := p.Options.Validate(); err != nil {
		return nil, err
	}
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &run{
		design: d,
		opts:   p.Options,
		log:    log,
		result: &Result{},
	}

	runStart := time.Now()
	timing := newTimingRecorder(runStart, p.resolveTimingPath())
	defer func() {
		timing.Close()
		if err == nil && timing.Err() != nil {
			log.WithError(timing.Err()).Warn("Writing timing events failed")
		}
	}()

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		conflict, ok := rec.(*netlist.NameConflictError)
		if !ok {
			panic(rec)
		}
		timing.RecordStage("total", runStart, "error")
		res = r.result
		err = errors.Wrap(conflict, "fault injection aborted, design left partially modified")
	}()

	injectStart := time.Now()
	sel := p.Options.Selection
	for _, m := range sel.SelectedModules(d) {
		moduleStart := time.Now()
		log.WithField("module", m.Name).Info("Updating module")
		r.injectModule(m, sel.SelectedCells(m))
		timing.RecordModule("inject", m.Name, moduleStart)
	}
	timing.RecordStage("inject", injectStart, "ok")

	propagateStart := time.Now()
	if err := r.propagate(); err != nil {
		timing.RecordStage("propagate", propagateStart, "error")
		timing.RecordStage("total", runStart, "error")
		return r.result, err
	}
	timing.RecordStage("propagate", propagateStart, "ok")

	generateStart := time.Now()
	r.generate()
	timing.RecordStage("generate", generateStart, "ok")

	r.result.TopSignals = r.topLevel
	timing.RecordStage("total", runStart, "ok")
	return r.result, nil
}

func (r *run) warn(fields logrus.Fields, msg string) {
	r.log.WithFields(fields).Warn(msg)
	r.result.Warnings = append(r.result.Warnings, msg)
}
