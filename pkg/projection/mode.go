package projection

// Mode selects how a Result is projected onto metrics.
type Mode uint8

const (
	// SingleRow emits the first column of the first row.
	SingleRow Mode = iota
	// MultiRow emits every column of every row, one suffix per column.
	MultiRow
	// CountRows emits the row count and ignores field values.
	CountRows
)

// NewMode collapses the raw command line switches into a Mode.
// Counting rows takes precedence over the multirow switch.
func NewMode(countTuples, multirow bool) Mode {
	switch {
	case countTuples:
		return CountRows
	case multirow:
		return MultiRow
	default:
		return SingleRow
	}
}

func (m Mode) String() string {
	switch m {
	case SingleRow:
		return "single-row"
	case MultiRow:
		return "multi-row"
	case CountRows:
		return "count-rows"
	default:
		return "unknown"
	}
}
