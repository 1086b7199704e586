package components

// ColumnType identifies what a movie column is showing
type ColumnType int

const (
	ColumnTypeCategory ColumnType = iota // One category's listing
	ColumnTypeSearch                     // Cross-category search results
)
