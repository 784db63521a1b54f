package sheets

import "regexp"

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern           = regexp.MustCompile(`[#&]gid=([0-9]+)`)
)

// ExtractSpreadsheetID returns the document id from a Google Sheets URL, or ""
// when the URL does not carry one.
func ExtractSpreadsheetID(url string) string {
	return firstGroup(spreadsheetIDPattern, url)
}

// ExtractGID returns the numeric tab id from a `#gid=` or `&gid=` marker, or "".
func ExtractGID(url string) string {
	return firstGroup(gidPattern, url)
}

func firstGroup(pattern *regexp.Regexp, value string) string {
	if value == "" {
		return ""
	}
	match := pattern.FindStringSubmatch(value)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
