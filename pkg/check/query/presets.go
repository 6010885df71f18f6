package query

import (
	_ "embed"

	"github.com/kylerisse/pgmetric/pkg/check"
)

// Names of the built-in presets.
const (
	PresetTableBloat = "table_bloat"
	PresetIndexBloat = "index_bloat"
)

//go:embed sql/table_bloat.sql
var tableBloatSQL string

//go:embed sql/index_bloat.sql
var indexBloatSQL string

// bloatMetrics are the columns both bloat estimation queries return.
var bloatMetrics = []check.MetricDef{
	{Suffix: "total_MB", Label: "total size", Unit: "MB"},
	{Suffix: "wasted_MB", Label: "estimated wasted size", Unit: "MB"},
	{Suffix: "bloat_pct", Label: "estimated bloat", Unit: "%"},
}

// RegisterPresets adds the built-in bloat estimation presets to reg.
func RegisterPresets(reg *check.Registry) error {
	presets := map[string]check.Descriptor{
		PresetTableBloat: {
			Label:   "table bloat",
			Query:   tableBloatSQL,
			Metrics: bloatMetrics,
		},
		PresetIndexBloat: {
			Label:   "btree index bloat",
			Query:   indexBloatSQL,
			Metrics: bloatMetrics,
		},
	}
	for name, desc := range presets {
		if err := reg.Register(name, desc); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in presets.
func NewRegistry() (*check.Registry, error) {
	reg := check.NewRegistry()
	if err := RegisterPresets(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
