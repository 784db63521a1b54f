package sheets

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultRange covers the whole first sheet of a document.
const DefaultRange = "A:Z"

// ErrTabNotFound means the spreadsheet has no tab with the requested gid.
var ErrTabNotFound = errors.New("sheet tab not found")

// TitleCache maps spreadsheet id -> gid -> tab title. Entries are never
// evicted; a stored title is trusted for the life of the cache.
type TitleCache struct {
	mu     sync.RWMutex
	titles map[string]map[string]string
}

// NewTitleCache returns an empty cache.
func NewTitleCache() *TitleCache {
	return &TitleCache{titles: make(map[string]map[string]string)}
}

// Get returns the cached title for a tab.
func (c *TitleCache) Get(spreadsheetID, gid string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	title, ok := c.titles[spreadsheetID][gid]
	return title, ok
}

// Store merges every tab of one spreadsheet into the cache under one lock.
func (c *TitleCache) Store(spreadsheetID string, tabs []Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byGID, ok := c.titles[spreadsheetID]
	if !ok {
		byGID = make(map[string]string, len(tabs))
		c.titles[spreadsheetID] = byGID
	}
	for _, tab := range tabs {
		byGID[strconv.FormatInt(tab.ID, 10)] = tab.Title
	}
}

// GetOrPopulate returns the cached title, calling populate on a miss and
// storing every tab it returns before answering again from the cache.
func (c *TitleCache) GetOrPopulate(ctx context.Context, spreadsheetID, gid string, populate func(context.Context) ([]Tab, error)) (string, error) {
	if title, ok := c.Get(spreadsheetID, gid); ok {
		titleCacheLookups.WithLabelValues("hit").Inc()
		return title, nil
	}
	titleCacheLookups.WithLabelValues("miss").Inc()
	tabs, err := populate(ctx)
	if err != nil {
		return "", err
	}
	c.Store(spreadsheetID, tabs)
	if title, ok := c.Get(spreadsheetID, gid); ok {
		return title, nil
	}
	return "", ErrTabNotFound
}

// Len reports the number of cached spreadsheets.
func (c *TitleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.titles)
}

// Resolution is the outcome of resolving a tab to a range reference.
// When Fallback is set, Range is DefaultRange and Cause says why.
type Resolution struct {
	Range    string
	Title    string
	Fallback bool
	Cause    error
}

// TitleResolver turns (spreadsheet id, gid) into a quoted range reference.
type TitleResolver struct {
	backend Backend
	cache   *TitleCache
}

// NewTitleResolver wires a backend and an owned cache. A nil cache gets a fresh one.
func NewTitleResolver(backend Backend, cache *TitleCache) *TitleResolver {
	if cache == nil {
		cache = NewTitleCache()
	}
	return &TitleResolver{backend: backend, cache: cache}
}

// Cache exposes the underlying title cache.
func (r *TitleResolver) Cache() *TitleCache {
	return r.cache
}

// Resolve never fails: an empty gid selects DefaultRange, and any lookup
// failure falls back to DefaultRange with Fallback set.
func (r *TitleResolver) Resolve(ctx context.Context, spreadsheetID, gid string) Resolution {
	if gid == "" {
		return Resolution{Range: DefaultRange}
	}
	title, err := r.cache.GetOrPopulate(ctx, spreadsheetID, gid, func(ctx context.Context) ([]Tab, error) {
		return r.backend.Tabs(ctx, spreadsheetID)
	})
	if err != nil {
		titleCacheLookups.WithLabelValues("fallback").Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"spreadsheet_id": spreadsheetID,
			"gid":            gid,
		}).Warn("sheet title unresolved, using default range")
		return Resolution{Range: DefaultRange, Fallback: true, Cause: err}
	}
	return Resolution{Range: QuoteRange(title), Title: title}
}

// QuoteRange builds `'<title>'!A:Z`, doubling any single quote in the title.
func QuoteRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + DefaultRange
}
