package spec

import (
	"testing"

	"skyshield/internal/model"
)

func TestDefaultTableEntries(t *testing.T) {
	table := Default()
	entry, ok := table.Lookup(model.AssetIRIST)
	if !ok {
		t.Fatal("IRIS-T missing from default table")
	}
	if entry.Cost != 500_000 || entry.OptimalRangeKm != 25 {
		t.Fatalf("IRIS-T entry wrong: %+v", entry)
	}

	// Gun and EW classes degrade to DefaultPk rather than carrying entries.
	if _, ok := table.Lookup(model.AssetZU23); ok {
		t.Fatal("ZU-23 should be untabulated")
	}
	if _, ok := table.Lookup(model.AssetBukovelEW); ok {
		t.Fatal("Bukovel EW should be untabulated")
	}
}

func TestTableIsolation(t *testing.T) {
	src := map[model.AssetClass]Entry{model.AssetIgla: {Cost: 25_000, BasePk: 0.65, OptimalRangeKm: 3.5}}
	table := NewTable(src)
	src[model.AssetIgla] = Entry{Cost: 1}
	entry, _ := table.Lookup(model.AssetIgla)
	if entry.Cost != 25_000 {
		t.Fatal("table shares storage with the source map")
	}
}

func TestExportKeysByName(t *testing.T) {
	out := Default().Export()
	if len(out) != len(Default().Classes()) {
		t.Fatalf("export size mismatch: %d", len(out))
	}
	if _, ok := out["Mobile Gun Group"]; !ok {
		t.Fatal("export missing gun group entry")
	}
}
