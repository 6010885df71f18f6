package query

import (
	"strings"
	"testing"

	"github.com/kylerisse/pgmetric/pkg/check"
)

func TestNewRegistry_Presets(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := reg.Types()
	if len(types) != 2 || types[0] != PresetIndexBloat || types[1] != PresetTableBloat {
		t.Fatalf("expected [%s %s], got %v", PresetIndexBloat, PresetTableBloat, types)
	}

	for _, name := range types {
		desc, err := reg.Describe(name)
		if err != nil {
			t.Fatalf("describe %s: %v", name, err)
		}
		if !strings.Contains(desc.Query, "SELECT") {
			t.Errorf("%s: query looks empty: %q", name, desc.Query)
		}
		cols := desc.Columns()
		want := []string{"total_MB", "wasted_MB", "bloat_pct"}
		if len(cols) != len(want) {
			t.Fatalf("%s: expected %v, got %v", name, want, cols)
		}
		for i := range want {
			if cols[i] != want[i] {
				t.Errorf("%s: column %d: expected %q, got %q", name, i, want[i], cols[i])
			}
		}
	}
}

func TestRegisterPresets_Twice(t *testing.T) {
	reg := check.NewRegistry()
	if err := RegisterPresets(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterPresets(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
