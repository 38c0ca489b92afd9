package export

// Table is the tabular content handed to the individual renderers.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}
