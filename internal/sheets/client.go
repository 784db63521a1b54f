package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"sheet-news/backend/internal/util"
)

// Tab is one sheet tab of a spreadsheet document.
type Tab struct {
	ID    int64
	Title string
}

// Backend is the read-only subset of the spreadsheet API the service needs.
type Backend interface {
	// GridData returns the cell grid, with hyperlinks, of the first sheet matched by rng.
	GridData(ctx context.Context, spreadsheetID, rng string) ([]Row, error)
	// Tabs lists every tab of the spreadsheet.
	Tabs(ctx context.Context, spreadsheetID string) ([]Tab, error)
	// Values returns the plain formatted values of rng.
	Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
}

// Config holds service-account credentials and transport settings.
type Config struct {
	ServiceAccountEmail string
	PrivateKey          string
	Endpoint            string
	Timeout             time.Duration
}

// ErrMissingCredentials is returned when the service account is not configured.
var ErrMissingCredentials = errors.New("sheets client missing service account credentials")

// ErrNoSheets is returned when a grid-data response carries no sheet.
var ErrNoSheets = errors.New("spreadsheet response contains no sheets")

// Client implements Backend against the Google Sheets v4 API.
type Client struct {
	svc *sheetsapi.Service
}

// NewClient authorizes the service account once and returns a ready client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	email := strings.TrimSpace(cfg.ServiceAccountEmail)
	privateKey := strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")
	if email == "" || strings.TrimSpace(privateKey) == "" {
		return nil, ErrMissingCredentials
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Token refreshes outlive ctx, which only bounds construction.
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	jwtCfg := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsReadonlyScope},
		TokenURL:   google.JWTTokenURL,
	}
	tokens := jwtCfg.TokenSource(tokenCtx)
	if _, err := tokens.Token(); err != nil {
		return nil, fmt.Errorf("authorize service account: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
	}
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// GridData fetches formatted values, effective values and hyperlinks for rng.
func (c *Client) GridData(ctx context.Context, spreadsheetID, rng string) ([]Row, error) {
	timer := util.StartTimer()
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Ranges(rng).
		IncludeGridData(true).
		Context(ctx).
		Do()
	observeCall("grid_data", timer, err)
	if err != nil {
		return nil, wrapAPIError("get grid data", spreadsheetID, err)
	}
	return rowsFromSpreadsheet(resp)
}

// Tabs fetches only the sheet properties of the document.
func (c *Client) Tabs(ctx context.Context, spreadsheetID string) ([]Tab, error) {
	timer := util.StartTimer()
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.sheetId", "sheets.properties.title").
		Context(ctx).
		Do()
	observeCall("tabs", timer, err)
	if err != nil {
		return nil, wrapAPIError("get tabs", spreadsheetID, err)
	}
	return tabsFromSpreadsheet(resp), nil
}

// Values fetches the rectangular value range rng.
func (c *Client) Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	timer := util.StartTimer()
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	observeCall("values", timer, err)
	if err != nil {
		return nil, wrapAPIError("get values", spreadsheetID, err)
	}
	return stringValues(resp.Values), nil
}

func rowsFromSpreadsheet(resp *sheetsapi.Spreadsheet) ([]Row, error) {
	if resp == nil || len(resp.Sheets) == 0 || resp.Sheets[0] == nil {
		return nil, ErrNoSheets
	}
	sheet := resp.Sheets[0]
	if len(sheet.Data) == 0 || sheet.Data[0] == nil {
		return nil, nil
	}
	rowData := sheet.Data[0].RowData
	rows := make([]Row, 0, len(rowData))
	for _, rd := range rowData {
		var row Row
		if rd != nil && len(rd.Values) > 0 {
			row.Values = make([]Cell, 0, len(rd.Values))
			for _, cd := range rd.Values {
				row.Values = append(row.Values, cellFromAPI(cd))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellFromAPI(cd *sheetsapi.CellData) Cell {
	if cd == nil {
		return Cell{}
	}
	cell := Cell{
		FormattedValue: cd.FormattedValue,
		Hyperlink:      cd.Hyperlink,
	}
	if cd.EffectiveValue != nil && cd.EffectiveValue.StringValue != nil {
		value := *cd.EffectiveValue.StringValue
		cell.StringValue = &value
	}
	return cell
}

func tabsFromSpreadsheet(resp *sheetsapi.Spreadsheet) []Tab {
	if resp == nil {
		return nil
	}
	tabs := make([]Tab, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		tabs = append(tabs, Tab{ID: sheet.Properties.SheetId, Title: sheet.Properties.Title})
	}
	return tabs
}

func stringValues(raw [][]interface{}) [][]string {
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		row := make([]string, len(r))
		for i, v := range r {
			if v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func wrapAPIError(op, spreadsheetID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s: status %d: %w", op, spreadsheetID, apiErr.Code, err)
	}
	return fmt.Errorf("%s %s: %w", op, spreadsheetID, err)
}
