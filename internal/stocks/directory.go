package stocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"sheet-news/backend/internal/sheets"
)

const unknownStockName = "Unknown"

// LoadDirectory reads the directory sheet and returns one entry per row whose
// link cell holds a hyperlink to a spreadsheet. Other rows are skipped.
func (s *Service) LoadDirectory(ctx context.Context) ([]StockLinkEntry, error) {
	rows, err := s.directoryRows(ctx)
	if err != nil {
		recordLookup("directory", err)
		logrus.WithError(err).WithField("spreadsheet_id", s.directoryID).Error("fetch directory sheet")
		return nil, Upstream(fmt.Sprintf("Failed to fetch %s sheet", s.directorySheet), err)
	}
	if len(rows) == 0 {
		err := NotFound(fmt.Sprintf("No data found in %s sheet", s.directorySheet))
		recordLookup("directory", err)
		return nil, err
	}

	entries := make([]StockLinkEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell, ok := row.Cell(s.linkColumn)
		if !ok {
			continue
		}
		name, hyperlink := sheets.ReadCell(cell)
		if hyperlink == "" {
			continue
		}
		spreadsheetID := sheets.ExtractSpreadsheetID(hyperlink)
		if spreadsheetID == "" {
			continue
		}
		entries = append(entries, StockLinkEntry{
			Name:          name,
			URL:           hyperlink,
			SpreadsheetID: spreadsheetID,
			GID:           optional(sheets.ExtractGID(hyperlink)),
		})
	}
	recordLookup("directory", nil)
	return entries, nil
}

// Search returns the directory rows where any column under a non-empty
// header contains q, case-insensitively.
func (s *Service) Search(ctx context.Context, q string) ([]SearchHit, error) {
	rows, err := s.directoryRows(ctx)
	if err != nil {
		recordLookup("search", err)
		logrus.WithError(err).WithField("query", q).Error("search directory sheet")
		return nil, Upstream("Failed to search stock links", err)
	}
	hits := []SearchHit{}
	if len(rows) == 0 {
		recordLookup("search", nil)
		return hits, nil
	}

	header := rows[0]
	needle := strings.ToLower(q)
	for _, row := range rows[1:] {
		if len(row.Values) == 0 {
			continue
		}
		if !rowMatches(header, row, needle) {
			continue
		}
		hits = append(hits, s.searchHit(row))
	}
	recordLookup("search", nil)
	return hits, nil
}

func rowMatches(header, row sheets.Row, needle string) bool {
	for i, headerCell := range header.Values {
		title, _ := sheets.ReadCell(headerCell)
		if title == "" {
			continue
		}
		cell, ok := row.Cell(i)
		if !ok {
			continue
		}
		display, _ := sheets.ReadCell(cell)
		if strings.Contains(strings.ToLower(display), needle) {
			return true
		}
	}
	return false
}

func (s *Service) searchHit(row sheets.Row) SearchHit {
	cell, _ := row.Cell(s.linkColumn)
	name, hyperlink := sheets.ReadCell(cell)
	if name == "" {
		name = unknownStockName
	}
	hit := SearchHit{Name: name}
	if hyperlink != "" {
		hit.URL = optional(hyperlink)
		hit.SpreadsheetID = optional(sheets.ExtractSpreadsheetID(hyperlink))
		hit.GID = optional(sheets.ExtractGID(hyperlink))
	}
	return hit
}

func (s *Service) directoryRows(ctx context.Context) ([]sheets.Row, error) {
	return s.backend.GridData(ctx, s.directoryID, s.directoryRange)
}

// FilterEntries keeps entries whose name or spreadsheet id contains q,
// case-insensitively. An empty q keeps everything.
func FilterEntries(entries []StockLinkEntry, q string) []StockLinkEntry {
	if q == "" {
		return entries
	}
	needle := strings.ToLower(q)
	out := make([]StockLinkEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), needle) ||
			strings.Contains(strings.ToLower(entry.SpreadsheetID), needle) {
			out = append(out, entry)
		}
	}
	return out
}
