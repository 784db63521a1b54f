package stocks

import "sheet-news/backend/internal/sheets"

// StockLinkEntry is one directory row that links to a stock's spreadsheet.
type StockLinkEntry struct {
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	SpreadsheetID string  `json:"spreadsheetId"`
	GID           *string `json:"gid"`
}

// SearchHit is a directory row matched by Search. Link fields are nil when
// the row's link cell has no hyperlink.
type SearchHit struct {
	Name          string  `json:"name"`
	URL           *string `json:"url"`
	SpreadsheetID *string `json:"spreadsheetId"`
	GID           *string `json:"gid"`
}

// StockNewsResult is the data of one stock resolved by name.
type StockNewsResult struct {
	StockName string          `json:"stockName"`
	URL       string          `json:"url"`
	Data      []sheets.Record `json:"data"`
}

// SpreadsheetNewsResult is the data of a spreadsheet addressed directly.
type SpreadsheetNewsResult struct {
	SpreadsheetID string          `json:"spreadsheetId"`
	GID           *string         `json:"gid"`
	Data          []sheets.Record `json:"data"`
}

// BatchResult holds per-name outcomes. Each requested name appears in
// exactly one of the two maps.
type BatchResult struct {
	Results map[string]*StockNewsResult `json:"results"`
	Errors  map[string]string           `json:"errors"`
}

// BatchItem is the outcome of one name in a batch.
type BatchItem struct {
	Name   string
	Result *StockNewsResult
	Err    error
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
