package check

// MetricDef describes the metric produced from one result column.
type MetricDef struct {
	// Suffix is appended to the scheme to name the metric (e.g. "wasted_MB").
	Suffix string

	// Label is a human-readable description, shown by --list-presets and
	// in textfile HELP lines.
	Label string

	// Unit is the unit of measurement (e.g. "MB", "%").
	Unit string
}

// Help returns the label followed by the unit in parentheses, or just the
// label when there is no unit.
func (m MetricDef) Help() string {
	if m.Unit == "" {
		return m.Label
	}
	return m.Label + " (" + m.Unit + ")"
}

// Descriptor declares a named query preset: the SQL text and, in column
// order, the metrics its result columns map to in multi-row mode.
type Descriptor struct {
	// Label is a short human-readable description.
	Label string

	// Query is the SQL text executed verbatim.
	Query string

	// Metrics lists one entry per result column.
	Metrics []MetricDef
}

// Columns returns the metric name suffixes in column order.
func (d Descriptor) Columns() []string {
	if len(d.Metrics) == 0 {
		return nil
	}
	cols := make([]string, len(d.Metrics))
	for i, m := range d.Metrics {
		cols[i] = m.Suffix
	}
	return cols
}
