package domain

// QueryResult is a read-only query answer rendered as text cells.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}
