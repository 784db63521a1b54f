package stocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"sheet-news/backend/internal/sheets"
)

const directoryID = "DIR"

// fakeBackend serves a directory grid plus per-spreadsheet tabs and values.
type fakeBackend struct {
	mu         sync.Mutex
	directory  []sheets.Row
	gridErr    error
	tabs       map[string][]sheets.Tab
	values     map[string]map[string][][]string // spreadsheet -> range -> rows
	valuesErr  map[string]error
	gridCalls  int
	valueCalls []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tabs:      make(map[string][]sheets.Tab),
		values:    make(map[string]map[string][][]string),
		valuesErr: make(map[string]error),
	}
}

func (f *fakeBackend) GridData(_ context.Context, spreadsheetID, rng string) ([]sheets.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gridCalls++
	if f.gridErr != nil {
		return nil, f.gridErr
	}
	if spreadsheetID != directoryID {
		return nil, fmt.Errorf("unexpected grid spreadsheet %s", spreadsheetID)
	}
	return f.directory, nil
}

func (f *fakeBackend) Tabs(_ context.Context, spreadsheetID string) ([]sheets.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tabs, ok := f.tabs[spreadsheetID]
	if !ok {
		return nil, errors.New("spreadsheet not found")
	}
	return tabs, nil
}

func (f *fakeBackend) Values(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valueCalls = append(f.valueCalls, spreadsheetID+" "+rng)
	if err := f.valuesErr[spreadsheetID]; err != nil {
		return nil, err
	}
	byRange, ok := f.values[spreadsheetID]
	if !ok {
		return nil, errors.New("spreadsheet not found")
	}
	return byRange[rng], nil
}

func (f *fakeBackend) setValues(spreadsheetID, rng string, rows [][]string) {
	if f.values[spreadsheetID] == nil {
		f.values[spreadsheetID] = make(map[string][][]string)
	}
	f.values[spreadsheetID][rng] = rows
}

func textCell(value string) sheets.Cell {
	return sheets.Cell{FormattedValue: value}
}

func linkCell(name, url string) sheets.Cell {
	return sheets.Cell{FormattedValue: name, Hyperlink: url}
}

func sheetURL(id, gid string) string {
	url := "https://docs.google.com/spreadsheets/d/" + id + "/edit"
	if gid != "" {
		url += "#gid=" + gid
	}
	return url
}

func row(cells ...sheets.Cell) sheets.Row {
	return sheets.Row{Values: cells}
}

func newTestService(t *testing.T, backend sheets.Backend) *Service {
	t.Helper()
	svc, err := NewService(backend, sheets.NewTitleResolver(backend, sheets.NewTitleCache()), Config{
		DirectorySpreadsheetID: directoryID,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
