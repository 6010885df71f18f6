package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylerisse/pgmetric/pkg/check"
	"github.com/kylerisse/pgmetric/pkg/projection"
)

func TestTextfile_Emit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgmetric.prom")
	tf, err := NewTextfile(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "textfile "+path, tf.Name())

	err = tf.Emit(context.Background(), ts, []projection.Emission{
		{Name: "db1.postgresql.total_MB", Value: projection.Numeric("1024")},
		{Name: "db1.postgresql.bloat_pct", Value: projection.Numeric("1.5")},
		{Name: "db1.postgresql.total_MB", Value: projection.Numeric("2048")},
		{Name: "db1.postgresql.relname", Value: projection.Text("pg_class")},
	})
	require.NoError(t, err)
	require.NoError(t, tf.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# TYPE db1_postgresql_total_MB gauge")
	assert.Contains(t, out, `db1_postgresql_total_MB{row="0"} 1024`)
	assert.Contains(t, out, `db1_postgresql_total_MB{row="1"} 2048`)
	assert.Contains(t, out, `db1_postgresql_bloat_pct{row="0"} 1.5`)
	assert.NotContains(t, out, "relname", "text values are not written")
	assert.Contains(t, out, "# HELP db1_postgresql_total_MB Value of db1.postgresql.total_MB.")
}

func TestTextfile_PresetHelp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgmetric.prom")
	tf, err := NewTextfile(path, []check.MetricDef{
		{Suffix: "total_MB", Label: "total size", Unit: "MB"},
		{Suffix: "bloat_pct", Label: "estimated bloat", Unit: "%"},
	}, nil)
	require.NoError(t, err)

	err = tf.Emit(context.Background(), ts, []projection.Emission{
		{Name: "db1.postgresql.total_MB", Value: projection.Numeric("1024")},
		{Name: "db1.postgresql.bloat_pct", Value: projection.Numeric("1.5")},
		{Name: "db1.postgresql", Value: projection.Numeric("7")},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# HELP db1_postgresql_total_MB total size (MB), from db1.postgresql.total_MB.")
	assert.Contains(t, out, "# HELP db1_postgresql_bloat_pct estimated bloat (%), from db1.postgresql.bloat_pct.")
	assert.Contains(t, out, "# HELP db1_postgresql Value of db1.postgresql.")
}

func TestTextfile_Validation(t *testing.T) {
	_, err := NewTextfile("", nil, nil)
	assert.Error(t, err)
}

func TestMetricName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"db1.postgresql.total_MB", "db1_postgresql_total_MB"},
		{"web-01.postgresql", "web_01_postgresql"},
		{"1host.postgresql", "_1host_postgresql"},
		{"a:b", "a:b"},
		{"", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MetricName(tt.in), tt.in)
	}
}
