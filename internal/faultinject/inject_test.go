package faultinject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

func TestInjectSkipsCellWithoutPrimaryOutput(t *testing.T) {
	d := netlist.NewDesign()
	m := d.AddModule("mem_only")
	m.Attributes.Set(netlist.AttrTop, netlist.ConstInt(1))
	data := m.AddWire("rd", 8)
	mem := m.AddCell("mem", "$mem_v2")
	mem.SetPort("RD_DATA", netlist.SigOf(data))

	wires, cells := len(m.Wires()), len(m.Cells())
	res := runPass(t, d)

	assert.Len(t, m.Wires(), wires)
	assert.Len(t, m.Cells(), cells)
	assert.Empty(t, res.Injections)
	assert.Empty(t, res.Ports)
	assert.Nil(t, d.Module(GeneratorModule))
}

func TestInjectPreservesWidth(t *testing.T) {
	d := netlist.NewDesign()
	m := addFFModule(d, "reg8", 8)
	m.Attributes.Set(netlist.AttrTop, netlist.ConstInt(1))

	res := runPass(t, d, "-no-add-input")

	require.Len(t, res.Injections, 1)
	inj := res.Injections[0]
	assert.Equal(t, "fi_ff_0", inj.Wire)
	assert.Equal(t, CategoryFF, inj.Category)
	assert.Equal(t, "Q", inj.Output)
	assert.Equal(t, 8, inj.Width)
	assert.Equal(t, 8, m.Wire("fi_ff_0").Width)

	gate := m.Cell(inj.Gate)
	require.NotNil(t, gate)
	assert.Equal(t, netlist.TypeXor, gate.Type)
	yw, _ := gate.Parameters.Get("Y_WIDTH")
	assert.Equal(t, netlist.ConstInt(8), yw)
}

func TestInjectSplicesGateIntoOutput(t *testing.T) {
	d := netlist.NewDesign()
	m := addFFModule(d, "reg", 2)
	m.Attributes.Set(netlist.AttrTop, netlist.ConstInt(1))
	ff := m.Cell("ff")
	q := m.Wire("q")

	res := runPass(t, d)
	require.Len(t, res.Injections, 1)
	gate := m.Cell(res.Injections[0].Gate)

	sm := netlist.NewSigMap(m)
	// the flip-flop no longer drives q directly
	assert.NotEqual(t, sm.Map(netlist.SigOf(q)), sm.Map(ff.Port("Q")))
	// the gate output drives q, its inputs are the fault wire and the old output
	assert.Equal(t, sm.Map(netlist.SigOf(q)), sm.Map(gate.Port("Y")))
	assert.Equal(t, netlist.SigOf(m.Wire("fi_ff_0")), gate.Port("A"))
	assert.Equal(t, ff.Port("Q"), gate.Port("B"))

	// two internal wires and one gate per injection
	assert.Len(t, m.Cells(), 3) // ff, gate, u_figenerator
}

func TestInjectNamesAndSharedIndex(t *testing.T) {
	d := loadTestdata(t, "hier.json")
	leaf := d.Module("leaf")

	res := runPass(t, d)

	var wires []string
	for _, inj := range res.Injections {
		wires = append(wires, inj.Wire)
	}
	// one counter per module across both categories
	assert.Equal(t, []string{"fi_ff_leaf_0", "fi_comb_leaf_1"}, wires)
	assert.Equal(t, []string{"clk", "d", "q", "fi_ff", "fi_comb"}, portNames(leaf))
	assert.True(t, leaf.Wire(PortFF).PortInput)
	assert.True(t, leaf.Wire(PortComb).PortInput)
}

func TestInjectSkipsModuleInstances(t *testing.T) {
	d := threeLevelDesign()
	res := runPass(t, d)
	for _, inj := range res.Injections {
		assert.Equal(t, "leaf", inj.Module)
	}
	require.Len(t, res.Injections, 1)
}

func TestInjectGateTypes(t *testing.T) {
	for _, gate := range []GateType{GateXor, GateAnd, GateOr} {
		t.Run(string(gate), func(t *testing.T) {
			d := loadTestdata(t, "hier.json")
			res := runPass(t, d, "-type", string(gate))
			require.NotEmpty(t, res.Injections)
			leaf := d.Module("leaf")
			for _, inj := range res.Injections {
				assert.Equal(t, gate.CellType(), leaf.Cell(inj.Gate).Type)
			}
		})
	}
}

func TestInjectNoFFOnFlipFlopDesign(t *testing.T) {
	d := threeLevelDesign()
	res := runPass(t, d, "-no-ff")

	assert.Empty(t, res.Injections)
	assert.Empty(t, res.Ports)
	assert.Nil(t, d.Module(GeneratorModule))
	assert.Equal(t, []string{"clk", "d", "q"}, wireNames(d.Module("leaf")))
}

func TestInjectNoComb(t *testing.T) {
	d := loadTestdata(t, "hier.json")
	res := runPass(t, d, "-no-comb")

	require.Len(t, res.Injections, 1)
	assert.Equal(t, CategoryFF, res.Injections[0].Category)
	assert.Nil(t, d.Module("leaf").Wire(PortComb))
}

func TestInjectRespectsSelection(t *testing.T) {
	d := loadTestdata(t, "hier.json")
	res := runPass(t, d, "leaf/inv")

	require.Len(t, res.Injections, 1)
	assert.Equal(t, "inv", res.Injections[0].Cell)
	assert.Equal(t, "fi_comb_leaf_0", res.Injections[0].Wire)
}

func TestInjectInTopModule(t *testing.T) {
	d := netlist.NewDesign()
	top := addFFModule(d, "top", 1)
	top.Attributes.Set(netlist.AttrTop, netlist.ConstInt(1))

	res := runPass(t, d)

	require.Len(t, res.Injections, 1)
	assert.Equal(t, "fi_ff_0", res.Injections[0].Wire)
	// the top bus is driven by the generator, not a port
	assert.False(t, top.Wire(PortFF).IsPort())
	require.Len(t, res.TopSignals, 1)
	assert.Equal(t, PortFF, res.TopSignals[0].Wire.Name)
}
