package sheets

// Cell is one grid cell as returned by the grid-data endpoint.
type Cell struct {
	FormattedValue string
	// StringValue is the structured effective value when the cell holds text.
	StringValue *string
	Hyperlink   string
}

// Row is a directory row. A nil Values slice means the row carried no cells.
type Row struct {
	Values []Cell
}

// Cell returns the cell at index, reporting false when the row is shorter.
func (r Row) Cell(index int) (Cell, bool) {
	if index < 0 || index >= len(r.Values) {
		return Cell{}, false
	}
	return r.Values[index], true
}

// ReadCell returns the display text and hyperlink of a cell. The formatted
// value wins over the structured string value; absent fields read as "".
func ReadCell(cell Cell) (display string, hyperlink string) {
	switch {
	case cell.FormattedValue != "":
		display = cell.FormattedValue
	case cell.StringValue != nil:
		display = *cell.StringValue
	}
	return display, cell.Hyperlink
}
