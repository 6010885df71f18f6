package pgsql

import (
	"database/sql"
	"strings"

	"github.com/kylerisse/pgmetric/pkg/projection"
)

// numericTypes are the database type names whose values are tagged numeric.
var numericTypes = map[string]bool{
	"INT2":    true,
	"INT4":    true,
	"INT8":    true,
	"FLOAT4":  true,
	"FLOAT8":  true,
	"NUMERIC": true,
	"OID":     true,
}

func readRows(rows *sql.Rows) (projection.Result, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return projection.Result{}, err
	}

	numeric := make([]bool, len(types))
	for i, ct := range types {
		numeric[i] = numericTypes[strings.ToUpper(ct.DatabaseTypeName())]
	}

	values := makeValues(len(types))
	var out []projection.Row

	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return projection.Result{}, err
		}
		row := make(projection.Row, len(values))
		for i, v := range values {
			row[i] = toValue(v, numeric[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return projection.Result{}, err
	}

	return projection.NewResult(out...), nil
}

func toValue(value any, numeric bool) projection.Value {
	v, ok := value.(*sql.NullString)
	if !ok || !v.Valid {
		return projection.Null()
	}
	if numeric {
		return projection.Numeric(v.String)
	}
	return projection.Text(v.String)
}

func makeValues(size int) []any {
	vs := make([]any, size)
	for i := range vs {
		vs[i] = &sql.NullString{}
	}
	return vs
}
