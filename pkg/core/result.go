package core

// Row maps column names to the values the engine returned for one row.
// Duplicate column names collapse to the last value.
type Row map[string]any

// ResultSet is the materialized output of one execution.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows, treating a nil result as empty.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Row returns the row at index i.
func (r *ResultSet) Row(i int) (Row, bool) {
	if r == nil || i < 0 || i >= len(r.Rows) {
		return nil, false
	}
	return r.Rows[i], true
}

// Values returns the row's values in column order.
func (r *ResultSet) Values(i int) []any {
	row, ok := r.Row(i)
	if !ok {
		return nil
	}
	out := make([]any, len(r.Columns))
	for j, c := range r.Columns {
		out[j] = row[c]
	}
	return out
}
