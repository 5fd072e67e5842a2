package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/addfi/internal/faultinject"
)

// Tables is the relational fact model of one fault injection run.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Injections       []InjectionRow       `json:"injections"`
	Ports            []PortRow            `json:"ports"`
	Forwards         []ForwardRow         `json:"forwards"`
	GeneratorOutputs []GeneratorOutputRow `json:"generator_outputs"`
}

type InjectionRow struct {
	Module   string `json:"module"`
	Cell     string `json:"cell"`
	CellType string `json:"cell_type"`
	Category string `json:"category"`
	Output   string `json:"output"`
	Wire     string `json:"wire"`
	Width    int    `json:"width"`
	Gate     string `json:"gate"`
}

// PortRow is a fault bus. Top buses are driven by the generator, the others
// are input ports of their module.
type PortRow struct {
	Module     string `json:"module"`
	Wire       string `json:"wire"`
	Width      int    `json:"width"`
	IsTop      bool   `json:"is_top"`
	Generation int    `json:"generation"`
}

type ForwardRow struct {
	Module     string `json:"module"`
	Instance   string `json:"instance"`
	Target     string `json:"target"`
	Port       string `json:"port"`
	Wire       string `json:"wire"`
	Width      int    `json:"width"`
	Generation int    `json:"generation"`
}

type GeneratorOutputRow struct {
	TopModule string `json:"top_module"`
	Index     int    `json:"index"`
	Port      string `json:"port"`
	Signal    string `json:"signal"`
	Width     int    `json:"width"`
}

// BuildTables converts a pass result into the relational model.
func BuildTables(res *faultinject.Result) Tables {
	tables := emptyTables()
	if res == nil {
		return tables
	}

	for _, inj := range res.Injections {
		tables.Injections = append(tables.Injections, InjectionRow{
			Module:   inj.Module,
			Cell:     inj.Cell,
			CellType: inj.CellType,
			Category: string(inj.Category),
			Output:   inj.Output,
			Wire:     inj.Wire,
			Width:    inj.Width,
			Gate:     inj.Gate,
		})
	}

	for _, p := range res.Ports {
		tables.Ports = append(tables.Ports, PortRow{
			Module:     p.Module,
			Wire:       p.Wire,
			Width:      p.Width,
			IsTop:      p.Top,
			Generation: p.Generation,
		})
	}

	for _, f := range res.Forwards {
		tables.Forwards = append(tables.Forwards, ForwardRow{
			Module:     f.Module,
			Instance:   f.Instance,
			Target:     f.Target,
			Port:       f.Port,
			Wire:       f.Wire,
			Width:      f.Width,
			Generation: f.Generation,
		})
	}

	if gen := res.Generator; gen != nil {
		for i, out := range gen.Outputs {
			tables.GeneratorOutputs = append(tables.GeneratorOutputs, GeneratorOutputRow{
				TopModule: gen.TopModule,
				Index:     i,
				Port:      out.Port,
				Signal:    out.Signal,
				Width:     out.Width,
			})
		}
	}

	sort.SliceStable(tables.Injections, func(i, j int) bool {
		a, b := tables.Injections[i], tables.Injections[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Cell < b.Cell
	})
	sort.SliceStable(tables.Ports, func(i, j int) bool {
		a, b := tables.Ports[i], tables.Ports[j]
		if a.Generation != b.Generation {
			return a.Generation < b.Generation
		}
		return a.Module < b.Module
	})
	sort.SliceStable(tables.Forwards, func(i, j int) bool {
		a, b := tables.Forwards[i], tables.Forwards[j]
		if a.Generation != b.Generation {
			return a.Generation < b.Generation
		}
		return a.Module < b.Module
	})

	return tables
}
