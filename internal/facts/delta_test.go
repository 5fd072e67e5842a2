package facts

import "testing"

func TestComputeDeltaAddsAndRemoves(t *testing.T) {
	prev := Tables{
		Injections: []InjectionRow{
			{Module: "leaf", Cell: "ff", Wire: "fi_ff_leaf_0", Width: 1, Gate: "$auto$addfi$3"},
		},
		Ports: []PortRow{
			{Module: "leaf", Wire: "fi_ff", Width: 1},
		},
	}
	next := Tables{
		Injections: []InjectionRow{
			{Module: "leaf", Cell: "ff", Wire: "fi_ff_leaf_0", Width: 1, Gate: "$auto$addfi$3"},
			{Module: "leaf", Cell: "inv", Wire: "fi_comb_leaf_1", Width: 1, Gate: "$auto$addfi$6"},
		},
		Ports: []PortRow{
			{Module: "leaf", Wire: "fi_ff", Width: 2},
		},
	}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Injections) != 1 || delta.Added.Injections[0].Cell != "inv" {
		t.Fatalf("expected injection on inv added, got %+v", delta.Added.Injections)
	}
	if len(delta.Removed.Injections) != 0 {
		t.Fatalf("expected no injection removed, got %+v", delta.Removed.Injections)
	}
	if len(delta.Added.Ports) != 1 || delta.Added.Ports[0].Width != 2 {
		t.Fatalf("expected widened port added, got %+v", delta.Added.Ports)
	}
	if len(delta.Removed.Ports) != 1 || delta.Removed.Ports[0].Width != 1 {
		t.Fatalf("expected old port removed, got %+v", delta.Removed.Ports)
	}
	if delta.Empty() {
		t.Fatalf("expected non-empty delta")
	}
}

func TestComputeDeltaIdenticalSnapshots(t *testing.T) {
	tables := Tables{
		Forwards: []ForwardRow{
			{Module: "mid", Instance: "u0", Target: "leaf", Port: "fi_ff", Wire: "fi_u0_0_fi_ff", Width: 1, Generation: 1},
		},
	}
	delta := ComputeDelta(tables, tables)
	if !delta.Empty() {
		t.Fatalf("expected empty delta, got %+v", delta)
	}
	if delta.Added.Forwards == nil || delta.Removed.GeneratorOutputs == nil {
		t.Fatalf("expected empty relations to be non-nil")
	}
}

func TestDecodeTablesFillsMissingRelations(t *testing.T) {
	tables, err := DecodeTables([]byte(`{"ports": [{"module": "leaf", "wire": "fi_ff", "width": 1, "is_top": false, "generation": 0}]}`))
	if err != nil {
		t.Fatalf("DecodeTables: %v", err)
	}
	if len(tables.Ports) != 1 || tables.Ports[0].Wire != "fi_ff" {
		t.Fatalf("unexpected ports %+v", tables.Ports)
	}
	if tables.Injections == nil || tables.Forwards == nil || tables.GeneratorOutputs == nil {
		t.Fatalf("expected missing relations to be empty, got %+v", tables)
	}
	if _, err := DecodeTables([]byte(`{"ports": 3}`)); err == nil {
		t.Fatalf("expected error for malformed facts")
	}
}
