package sheets

import (
	"fmt"
	"testing"
)

func TestExtractRoundTrip(t *testing.T) {
	tests := []struct {
		id  string
		gid string
	}{
		{"1AbC-def_GhI", "0"},
		{"ID123", "55"},
		{"x", "1234567890"},
	}
	for _, tc := range tests {
		hash := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%s", tc.id, tc.gid)
		query := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit?usp=sharing&gid=%s", tc.id, tc.gid)
		for _, url := range []string{hash, query} {
			if got := ExtractSpreadsheetID(url); got != tc.id {
				t.Fatalf("%s: expected id %q got %q", url, tc.id, got)
			}
			if got := ExtractGID(url); got != tc.gid {
				t.Fatalf("%s: expected gid %q got %q", url, tc.gid, got)
			}
		}
	}
}

func TestExtractMissingParts(t *testing.T) {
	tests := []struct {
		name string
		url  string
		id   string
		gid  string
	}{
		{"no gid", "https://docs.google.com/spreadsheets/d/ID123/edit", "ID123", ""},
		{"empty", "", "", ""},
		{"not a sheet", "https://example.com/page?x=1&gid=4", "", "4"},
		{"query gid needs marker", "https://example.com/page?gid=4", "", ""},
		{"gid without marker", "https://docs.google.com/spreadsheets/d/ID9/edit?xgid=7", "ID9", ""},
		{"non numeric gid", "https://docs.google.com/spreadsheets/d/ID9#gid=abc", "ID9", ""},
		{"truncated", "/spreadsheets/d/", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractSpreadsheetID(tc.url); got != tc.id {
				t.Fatalf("expected id %q got %q", tc.id, got)
			}
			if got := ExtractGID(tc.url); got != tc.gid {
				t.Fatalf("expected gid %q got %q", tc.gid, got)
			}
		})
	}
}
