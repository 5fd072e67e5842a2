package facts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/robert-at-pretension-io/addfi/internal/faultinject"
	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

func runHier(t *testing.T) *faultinject.Result {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "hier.json"))
	if err != nil {
		t.Fatalf("read netlist: %v", err)
	}
	d, err := netlist.ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	p := faultinject.New(faultinject.DefaultOptions())
	p.Log, _ = logtest.NewNullLogger()
	res, err := p.Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestBuildTablesPopulatesRelations(t *testing.T) {
	tables := BuildTables(runHier(t))

	if len(tables.Injections) != 2 {
		t.Fatalf("expected 2 injection rows, got %d", len(tables.Injections))
	}
	if got := tables.Injections[0]; got.Module != "leaf" || got.Cell != "ff" || got.Category != "ff" {
		t.Fatalf("unexpected first injection row %+v", got)
	}
	if len(tables.Forwards) != 6 {
		t.Fatalf("expected 6 forward rows, got %d", len(tables.Forwards))
	}

	want := []GeneratorOutputRow{
		{TopModule: "top", Index: 0, Port: "fi_0", Signal: "fi_forward_2", Width: 2},
		{TopModule: "top", Index: 1, Port: "fi_1", Signal: "fi_forward_3", Width: 2},
	}
	if diff := cmp.Diff(want, tables.GeneratorOutputs); diff != "" {
		t.Fatalf("generator rows (-want +got):\n%s", diff)
	}

	for i := 1; i < len(tables.Ports); i++ {
		if tables.Ports[i].Generation < tables.Ports[i-1].Generation {
			t.Fatalf("port rows not ordered by generation: %+v", tables.Ports)
		}
	}
}

func TestBuildTablesNilResult(t *testing.T) {
	tables := BuildTables(nil)
	if tables.Len() != 0 || tables.Injections == nil {
		t.Fatalf("expected empty non-nil relations, got %+v", tables)
	}
}

func TestBuildTablesStableAcrossRuns(t *testing.T) {
	delta := ComputeDelta(BuildTables(runHier(t)), BuildTables(runHier(t)))
	if !delta.Empty() {
		t.Fatalf("expected identical tables, got delta %+v", delta)
	}
}
