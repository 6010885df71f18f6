package projection

// Row is one result row: field values in column order.
type Row []Value

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r)
}

// At returns the value at column i and whether i is in range.
func (r Row) At(i int) (Value, bool) {
	if i < 0 || i >= len(r) {
		return Value{}, false
	}
	return r[i], true
}

// Result is a complete query result. The executor guarantees that every row
// has the same column count; Result does not validate it.
type Result struct {
	rows []Row
}

// NewResult builds a Result from rows. The slice is not copied.
func NewResult(rows ...Row) Result {
	return Result{rows: rows}
}

// RowCount returns the number of rows.
func (r Result) RowCount() int {
	return len(r.rows)
}

// Rows returns the rows in order.
func (r Result) Rows() []Row {
	return r.rows
}
