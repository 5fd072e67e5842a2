package faultinject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

func quietPass(opts Options) (*Pass, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	p := New(opts)
	p.Log = logger
	return p, hook
}

func runPass(t *testing.T, d *netlist.Design, args ...string) *Result {
	t.Helper()
	opts, err := ParseArgs(args, DefaultOptions())
	require.NoError(t, err)
	p, _ := quietPass(opts)
	res, err := p.Run(d)
	require.NoError(t, err)
	return res
}

func loadTestdata(t *testing.T, name string) *netlist.Design {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	d, err := netlist.ReadJSON(data)
	require.NoError(t, err)
	return d
}

// addFFModule adds a module with clk/d inputs, a q output and one $dff of
// the given width.
func addFFModule(d *netlist.Design, name string, width int) *netlist.Module {
	m := d.AddModule(name)
	clk := m.AddWire("clk", 1)
	clk.PortInput = true
	in := m.AddWire("d", width)
	in.PortInput = true
	q := m.AddWire("q", width)
	q.PortOutput = true
	m.FixupPorts()

	ff := m.AddCell("ff", "$dff")
	ff.Parameters.Set("WIDTH", netlist.ConstInt(width))
	ff.SetPort("CLK", netlist.SigOf(clk))
	ff.SetPort("D", netlist.SigOf(in))
	ff.SetPort("Q", netlist.SigOf(q))
	return m
}

func addInstances(parent *netlist.Module, typ string, names ...string) {
	for _, n := range names {
		parent.AddCell(n, typ)
	}
}

// threeLevelDesign builds leaf (one flip-flop) -> mid (leaf twice) ->
// top (mid once).
func threeLevelDesign() *netlist.Design {
	d := netlist.NewDesign()
	addFFModule(d, "leaf", 1)
	mid := d.AddModule("mid")
	addInstances(mid, "leaf", "u0", "u1")
	top := d.AddModule("top")
	top.Attributes.Set(netlist.AttrTop, netlist.ConstInt(1))
	addInstances(top, "mid", "um")
	return d
}

func wireNames(m *netlist.Module) []string {
	var out []string
	for _, w := range m.Wires() {
		out = append(out, w.Name)
	}
	return out
}

func portNames(m *netlist.Module) []string {
	var out []string
	for _, w := range m.Ports() {
		out = append(out, w.Name)
	}
	return out
}

func cellTypes(m *netlist.Module) []string {
	var out []string
	for _, c := range m.Cells() {
		out = append(out, c.Type)
	}
	return out
}
