package types

// Row is a single result-set row keyed by column name.
type Row map[string]any

// Field describes one column of a result set.
type Field struct {
	Name string
}

// Result is the vendor-independent shape of a statement's outcome. For a
// row-returning statement Rows and Fields are populated and RowCount equals
// len(Rows). For an exec-style statement Rows and Fields are nil and RowCount
// carries the driver's rows-affected count.
type Result struct {
	Rows     []Row
	RowCount int64
	Fields   []Field
}

// FieldNames returns the column names in result-set order.
func (r *Result) FieldNames() []string {
	if len(r.Fields) == 0 {
		return nil
	}
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}
