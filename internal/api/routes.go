package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"sheet-news/backend/internal/stocks"
)

// StockService is the lookup surface the handlers need.
type StockService interface {
	LoadDirectory(ctx context.Context) ([]stocks.StockLinkEntry, error)
	Search(ctx context.Context, q string) ([]stocks.SearchHit, error)
	GetStockNews(ctx context.Context, stockName string) (*stocks.StockNewsResult, error)
	GetNewsBySpreadsheetID(ctx context.Context, spreadsheetID, gid string) (*stocks.SpreadsheetNewsResult, error)
	GetMultipleStockNews(ctx context.Context, names []string) stocks.BatchResult
	StreamStockNews(ctx context.Context, names []string, emit func(stocks.BatchItem))
}

// Config defines server dependencies.
type Config struct {
	Stocks         StockService
	APIKey         string
	AllowedOrigins []string
	StaticDir      string
	// RateLimit requests are allowed per RateWindow across all clients.
	RateLimit  int
	RateWindow time.Duration
}

// Server wires HTTP handlers to the stock service.
type Server struct {
	stocks         StockService
	apiKey         string
	allowedOrigins []string
	staticDir      string
	limiter        *rate.Limiter
}

const (
	defaultRateLimit  = 50
	defaultRateWindow = time.Minute
)

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Stocks == nil {
		return nil, errors.New("stock service required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logrus.Warn("API key is not configured; every /api request will be rejected")
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	window := cfg.RateWindow
	if window <= 0 {
		window = defaultRateWindow
	}

	staticDir := strings.TrimSpace(cfg.StaticDir)
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
			logrus.WithField("static_dir", staticDir).Warn("static directory not found; serving API only")
			staticDir = ""
		}
	}

	return &Server{
		stocks:         cfg.Stocks,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		allowedOrigins: cfg.AllowedOrigins,
		staticDir:      staticDir,
		limiter:        rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", requestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	// Registered before the limiter so scrapes never consume request budget.
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(rateLimit(s.limiter))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api", requireAPIKey(s.apiKey))
	{
		api.GET("/stock-links", s.handleStockLinks)
		api.GET("/stock-links/search", s.handleSearch)
		api.GET("/sheet-news/:stock_name", s.handleStockNews)
		api.GET("/spreadsheet-news/:id", s.handleSpreadsheetNews)
		api.POST("/sheet-news", s.handleBatchStockNews)
		api.GET("/stream/sheet-news", s.handleStockNewsStream)
	}

	r.NoRoute(s.handleNoRoute)

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleStockLinks(c *gin.Context) {
	entries, err := s.stocks.LoadDirectory(c.Request.Context())
	if err != nil {
		s.renderError(c, stocks.StatusOf(err), err)
		return
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		entries = stocks.FilterEntries(entries, q)
	}
	renderData(c, entries)
}

func (s *Server) handleSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		s.renderError(c, http.StatusBadRequest, stocks.Validation(`Query parameter "q" is required`))
		return
	}
	hits, err := s.stocks.Search(c.Request.Context(), q)
	if err != nil {
		s.renderError(c, stocks.StatusOf(err), err)
		return
	}
	renderData(c, hits)
}

func (s *Server) handleStockNews(c *gin.Context) {
	name := strings.TrimSpace(c.Param("stock_name"))
	if name == "" {
		s.renderError(c, http.StatusBadRequest, stocks.Validation("Stock name required"))
		return
	}
	result, err := s.stocks.GetStockNews(c.Request.Context(), name)
	if err != nil {
		s.renderError(c, stocks.StatusOf(err), err)
		return
	}
	renderData(c, result)
}

func (s *Server) handleSpreadsheetNews(c *gin.Context) {
	result, err := s.stocks.GetNewsBySpreadsheetID(c.Request.Context(), c.Param("id"), c.Query("gid"))
	if err != nil {
		s.renderError(c, stocks.StatusOf(err), err)
		return
	}
	renderData(c, result)
}

func (s *Server) handleBatchStockNews(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Stocks) == 0 {
		s.renderError(c, http.StatusBadRequest, stocks.Validation("Stocks array required"))
		return
	}
	batch := s.stocks.GetMultipleStockNews(c.Request.Context(), req.Stocks)
	renderData(c, newBatchResponse(batch))
}

func (s *Server) handleNoRoute(c *gin.Context) {
	if s.staticDir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
		if path, ok := s.staticFile(c.Request.URL.Path); ok {
			c.File(path)
			return
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Status: statusError, Message: "Route not found"})
}

// staticFile maps a request path into the static directory, serving
// index.html for directories.
func (s *Server) staticFile(requestPath string) (string, bool) {
	path := filepath.Join(s.staticDir, filepath.FromSlash(filepath.Clean("/"+requestPath)))
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		path = filepath.Join(path, "index.html")
		if info, err = os.Stat(path); err != nil || info.IsDir() {
			return "", false
		}
	}
	return path, true
}

func renderData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: data})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	message := err.Error()
	var stockErr *stocks.Error
	if !errors.As(err, &stockErr) {
		message = "Internal server error"
	}
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}).Error("request failed")
	}
	c.JSON(status, ErrorResponse{Status: statusError, Message: message})
}
