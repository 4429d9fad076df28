package spec

import (
	"sort"

	"skyshield/internal/model"
)

// DefaultPk is the modeled kill probability for any asset class that has no
// entry in the specification table.
const DefaultPk = 0.75

// Entry holds the static per-class constants used by the success-rate
// estimator and the pattern calculators.
type Entry struct {
	Cost             int     `json:"cost"`
	RangeKm          float64 `json:"range_km"`
	BasePk           float64 `json:"pk_base"`
	OptimalRangeKm   float64 `json:"optimal_range_km"`
	LaunchMinutes    int     `json:"launch_minutes,omitempty"`
	SetupMinutes     int     `json:"setup_minutes,omitempty"`
	LoiterMinutes    int     `json:"loiter_minutes,omitempty"`
	WeatherSensitive bool    `json:"weather_sensitive,omitempty"`
	RequiresAcoustic bool    `json:"requires_acoustic,omitempty"`
	RequiresVisual   bool    `json:"requires_visual,omitempty"`
}

// Table is an immutable asset specification table. It is built once at
// startup and injected; nothing mutates it afterwards.
type Table struct {
	entries map[model.AssetClass]Entry
}

func NewTable(entries map[model.AssetClass]Entry) *Table {
	copied := make(map[model.AssetClass]Entry, len(entries))
	for class, e := range entries {
		copied[class] = e
	}
	return &Table{entries: copied}
}

// Lookup returns the entry for a class. The second return is false for
// untabulated classes; callers degrade to DefaultPk rather than failing.
func (t *Table) Lookup(class model.AssetClass) (Entry, bool) {
	e, ok := t.entries[class]
	return e, ok
}

func (t *Table) Classes() []model.AssetClass {
	out := make([]model.AssetClass, 0, len(t.entries))
	for class := range t.entries {
		out = append(out, class)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Export returns a copy of the table keyed by class name, for the reference
// API endpoint.
func (t *Table) Export() map[string]Entry {
	out := make(map[string]Entry, len(t.entries))
	for class, e := range t.entries {
		out[string(class)] = e
	}
	return out
}

// Default returns the specification table derived from published combat
// data. The gun and EW classes are deliberately untabulated; estimates for
// them fall back to DefaultPk.
func Default() *Table {
	return NewTable(map[model.AssetClass]Entry{
		model.AssetPatriot: {
			Cost:           3_000_000,
			RangeKm:        160,
			BasePk:         0.95,
			OptimalRangeKm: 80,
		},
		model.AssetIRIST: {
			Cost:           500_000,
			RangeKm:        40,
			BasePk:         0.93,
			OptimalRangeKm: 25,
		},
		model.AssetBukM1: {
			Cost:           100_000,
			RangeKm:        35,
			BasePk:         0.85,
			OptimalRangeKm: 20,
		},
		model.AssetStinger: {
			Cost:           38_000,
			RangeKm:        4.8,
			BasePk:         0.70,
			OptimalRangeKm: 3,
		},
		model.AssetIgla: {
			Cost:           25_000,
			RangeKm:        5,
			BasePk:         0.65,
			OptimalRangeKm: 3.5,
		},
		model.AssetInterceptorDrone: {
			Cost:           5_000,
			RangeKm:        20,
			BasePk:         0.60,
			OptimalRangeKm: 15,
			LaunchMinutes:  3,
		},
		model.AssetMobileGroup: {
			Cost:             500,
			RangeKm:          2.5,
			BasePk:           0.35,
			OptimalRangeKm:   2,
			SetupMinutes:     15,
			RequiresAcoustic: true,
		},
		model.AssetHelicopter: {
			Cost:             2_000,
			RangeKm:          10,
			BasePk:           0.50,
			OptimalRangeKm:   8,
			LoiterMinutes:    90,
			WeatherSensitive: true,
			RequiresVisual:   true,
		},
	})
}
