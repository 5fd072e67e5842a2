package netlist

import (
	"fmt"
	"sort"
	"strings"
)

// ParentGraph maps a module name to the set of modules instantiating it.
type ParentGraph map[string]map[string]bool

// BuildParentGraph records, for every cell whose type is a module of d,
// the containing module as a parent of that type.
func BuildParentGraph(d *Design) ParentGraph {
	graph := make(ParentGraph)
	for _, m := range d.modules {
		for _, c := range m.cells {
			if d.Module(c.Type) == nil {
				continue
			}
			if graph[c.Type] == nil {
				graph[c.Type] = make(map[string]bool)
			}
			graph[c.Type][m.Name] = true
		}
	}
	return graph
}

// ImpactReport lists the modules above Root, one level per hierarchy step.
type ImpactReport struct {
	Root   string     `json:"root"`
	Levels [][]string `json:"levels"`
}

// Impact walks the parents of root breadth first. Each module appears at
// the first level it is reached; levels are sorted by name.
func (g ParentGraph) Impact(root string) ImpactReport {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var levels [][]string

	for len(frontier) > 0 {
		var next []string
		for _, m := range frontier {
			for parent := range g[m] {
				if visited[parent] {
					continue
				}
				visited[parent] = true
				next = append(next, parent)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Strings(next)
		levels = append(levels, next)
		frontier = next
	}

	return ImpactReport{Root: root, Levels: levels}
}

func (r ImpactReport) String() string {
	var b strings.Builder
	b.WriteString(r.Root)
	for i, level := range r.Levels {
		fmt.Fprintf(&b, "; level %d (%d): %s", i+1, len(level), strings.Join(level, ", "))
	}
	return b.String()
}
