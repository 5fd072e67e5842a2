package facts

import (
	"encoding/json"
	"strconv"
)

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// Empty reports whether the two snapshots had the same rows.
func (d Delta) Empty() bool {
	return d.Added.Len() == 0 && d.Removed.Len() == 0
}

// Len returns the total number of rows in t.
func (t Tables) Len() int {
	return len(t.Injections) + len(t.Ports) + len(t.Forwards) + len(t.GeneratorOutputs)
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Injections = diffInjectionRows(from.Injections, to.Injections)
	out.Ports = diffPortRows(from.Ports, to.Ports)
	out.Forwards = diffForwardRows(from.Forwards, to.Forwards)
	out.GeneratorOutputs = diffGeneratorOutputRows(from.GeneratorOutputs, to.GeneratorOutputs)

	return out
}

func emptyTables() Tables {
	return Tables{
		Injections:       []InjectionRow{},
		Ports:            []PortRow{},
		Forwards:         []ForwardRow{},
		GeneratorOutputs: []GeneratorOutputRow{},
	}
}

func diffInjectionRows(from, to []InjectionRow) []InjectionRow {
	return diffRows(from, to, func(r InjectionRow) string {
		return r.Module + "|" + r.Cell + "|" + r.CellType + "|" + r.Category + "|" + r.Output + "|" + r.Wire + "|" + intKey(r.Width) + "|" + r.Gate
	})
}

func diffPortRows(from, to []PortRow) []PortRow {
	return diffRows(from, to, func(r PortRow) string {
		return r.Module + "|" + r.Wire + "|" + intKey(r.Width) + "|" + boolKey(r.IsTop) + "|" + intKey(r.Generation)
	})
}

func diffForwardRows(from, to []ForwardRow) []ForwardRow {
	return diffRows(from, to, func(r ForwardRow) string {
		return r.Module + "|" + r.Instance + "|" + r.Target + "|" + r.Port + "|" + r.Wire + "|" + intKey(r.Width) + "|" + intKey(r.Generation)
	})
}

func diffGeneratorOutputRows(from, to []GeneratorOutputRow) []GeneratorOutputRow {
	return diffRows(from, to, func(r GeneratorOutputRow) string {
		return r.TopModule + "|" + intKey(r.Index) + "|" + r.Port + "|" + r.Signal + "|" + intKey(r.Width)
	})
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	var diff []T
	for _, row := range to {
		rowKey := key(row)
		if _, ok := fromSet[rowKey]; !ok {
			diff = append(diff, row)
		}
	}
	if diff == nil {
		diff = []T{}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func intKey(v int) string {
	return strconv.Itoa(v)
}

// DecodeTables parses a facts JSON document. Relations missing from the
// document are empty.
func DecodeTables(data []byte) (Tables, error) {
	tables := emptyTables()
	if err := json.Unmarshal(data, &tables); err != nil {
		return Tables{}, err
	}
	tables.fillEmpty()
	return tables, nil
}

func (t *Tables) fillEmpty() {
	if t.Injections == nil {
		t.Injections = []InjectionRow{}
	}
	if t.Ports == nil {
		t.Ports = []PortRow{}
	}
	if t.Forwards == nil {
		t.Forwards = []ForwardRow{}
	}
	if t.GeneratorOutputs == nil {
		t.GeneratorOutputs = []GeneratorOutputRow{}
	}
}
