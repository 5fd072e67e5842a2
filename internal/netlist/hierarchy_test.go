package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpactExpansion(t *testing.T) {
	d := NewDesign()
	d.AddModule("leaf")
	a := d.AddModule("b_wrap")
	a.AddCell("u0", "leaf")
	a.AddCell("u1", "leaf")
	b := d.AddModule("a_wrap")
	b.AddCell("u0", "leaf")
	b.AddCell("g", "$and")
	top := d.AddModule("top")
	top.AddCell("ua", "a_wrap")
	top.AddCell("ub", "b_wrap")
	top.AddCell("ul", "leaf")

	graph := BuildParentGraph(d)
	assert.NotContains(t, graph, "$and")

	report := graph.Impact("leaf")
	require.Len(t, report.Levels, 1)
	assert.Equal(t, []string{"a_wrap", "b_wrap", "top"}, report.Levels[0])
	assert.Equal(t, "leaf; level 1 (3): a_wrap, b_wrap, top", report.String())

	report = graph.Impact("a_wrap")
	assert.Equal(t, [][]string{{"top"}}, report.Levels)

	assert.Empty(t, graph.Impact("top").Levels)
}

func TestImpactStopsOnCycles(t *testing.T) {
	d := NewDesign()
	x := d.AddModule("x")
	y := d.AddModule("y")
	x.AddCell("uy", "y")
	y.AddCell("ux", "x")

	report := BuildParentGraph(d).Impact("x")
	assert.Equal(t, [][]string{{"y"}}, report.Levels)
}
