package stocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"sheet-news/backend/internal/match"
	"sheet-news/backend/internal/sheets"
	"sheet-news/backend/internal/util"
)

const (
	defaultDirectorySheet = "Stock_Score"
	defaultLinkColumn     = "B"
	minFuzzyTargetLength  = 3
)

// Config names the directory spreadsheet.
type Config struct {
	DirectorySpreadsheetID string
	// DirectorySheet is the tab listing stocks. Defaults to Stock_Score.
	DirectorySheet string
	// LinkColumn is the column letter (A-Z) holding each stock's hyperlink. Defaults to B.
	LinkColumn string
}

// Service resolves stock names to spreadsheets and shapes their rows.
type Service struct {
	backend        sheets.Backend
	titles         *sheets.TitleResolver
	directoryID    string
	directorySheet string
	directoryRange string
	linkColumn     int
}

// NewService wires a spreadsheet backend and a title resolver.
func NewService(backend sheets.Backend, titles *sheets.TitleResolver, cfg Config) (*Service, error) {
	if backend == nil {
		return nil, Initialization("Failed to initialize Google Sheets API", errors.New("backend is nil"))
	}
	directoryID := strings.TrimSpace(cfg.DirectorySpreadsheetID)
	if directoryID == "" {
		return nil, Initialization("Directory spreadsheet id is not configured", nil)
	}
	sheet := strings.TrimSpace(cfg.DirectorySheet)
	if sheet == "" {
		sheet = defaultDirectorySheet
	}
	column, err := columnIndex(cfg.LinkColumn)
	if err != nil {
		return nil, Initialization(err.Error(), err)
	}
	if titles == nil {
		titles = sheets.NewTitleResolver(backend, nil)
	}
	return &Service{
		backend:        backend,
		titles:         titles,
		directoryID:    directoryID,
		directorySheet: sheet,
		directoryRange: sheet + "!A:Z",
		linkColumn:     column,
	}, nil
}

// GetStockNews resolves a free-text stock name against the directory and
// returns the rows of its spreadsheet.
func (s *Service) GetStockNews(ctx context.Context, stockName string) (*StockNewsResult, error) {
	result, err := s.getStockNews(ctx, stockName)
	recordLookup("stock_news", err)
	return result, err
}

func (s *Service) getStockNews(ctx context.Context, stockName string) (*StockNewsResult, error) {
	entries, err := s.LoadDirectory(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := MatchEntry(entries, stockName)
	if !ok {
		return nil, NotFound(fmt.Sprintf("Stock not found: %s", stockName))
	}
	records, err := s.fetchRecords(ctx, entry.SpreadsheetID, deref(entry.GID))
	if err != nil {
		return nil, err
	}
	return &StockNewsResult{
		StockName: entry.Name,
		URL:       entry.URL,
		Data:      records,
	}, nil
}

// GetNewsBySpreadsheetID skips name resolution and reads the given spreadsheet.
func (s *Service) GetNewsBySpreadsheetID(ctx context.Context, spreadsheetID, gid string) (*SpreadsheetNewsResult, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	gid = strings.TrimSpace(gid)
	if spreadsheetID == "" {
		err := Validation("Spreadsheet ID required")
		recordLookup("spreadsheet_news", err)
		return nil, err
	}
	records, err := s.fetchRecords(ctx, spreadsheetID, gid)
	recordLookup("spreadsheet_news", err)
	if err != nil {
		return nil, err
	}
	return &SpreadsheetNewsResult{
		SpreadsheetID: spreadsheetID,
		GID:           optional(gid),
		Data:          records,
	}, nil
}

func (s *Service) fetchRecords(ctx context.Context, spreadsheetID, gid string) ([]sheets.Record, error) {
	timer := util.StartTimer()
	resolution := s.titles.Resolve(ctx, spreadsheetID, gid)
	rows, err := s.backend.Values(ctx, spreadsheetID, resolution.Range)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"spreadsheet_id": spreadsheetID,
			"range":          resolution.Range,
		}).Error("fetch spreadsheet values")
		return nil, Upstream(fmt.Sprintf("Failed to fetch data from spreadsheet: %s", spreadsheetID), err)
	}
	records := sheets.Project(rows)
	logrus.WithFields(logrus.Fields{
		"spreadsheet_id": spreadsheetID,
		"range":          resolution.Range,
		"fallback":       resolution.Fallback,
		"records":        len(records),
		"duration_ms":    timer.ElapsedMs(),
	}).Debug("spreadsheet values fetched")
	return records, nil
}

// MatchEntry picks the directory entry for a free-text name: an exact
// normalized match first, then the first entry whose normalized name contains
// or is contained in the target. The containment rule needs a target of at
// least three characters.
func MatchEntry(entries []StockLinkEntry, stockName string) (StockLinkEntry, bool) {
	target := match.NormalizeName(stockName)
	keys := make([]string, len(entries))
	for i, entry := range entries {
		keys[i] = match.NormalizeName(entry.Name)
		if keys[i] == target {
			return entry, true
		}
	}
	if utf8.RuneCountInString(target) < minFuzzyTargetLength {
		return StockLinkEntry{}, false
	}
	for i, entry := range entries {
		if strings.Contains(keys[i], target) || strings.Contains(target, keys[i]) {
			return entry, true
		}
	}
	return StockLinkEntry{}, false
}

func columnIndex(letter string) (int, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		letter = defaultLinkColumn
	}
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, fmt.Errorf("invalid directory link column %q: expected a letter A-Z", letter)
	}
	return int(letter[0] - 'A'), nil
}
