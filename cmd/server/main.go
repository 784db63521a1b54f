package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"sheet-news/backend/internal/api"
	"sheet-news/backend/internal/config"
	"sheet-news/backend/internal/sheets"
	"sheet-news/backend/internal/stocks"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("load .env file")
	}

	cfg, err := config.Load(os.Getenv("SHEET_NEWS_CONFIG"))
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logrus.SetLevel(cfg.ParseLogLevel())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	initCtx, cancel := context.WithTimeout(context.Background(), cfg.Google.Timeout+5*time.Second)
	client, err := sheets.NewClient(initCtx, sheets.Config{
		ServiceAccountEmail: cfg.Google.ServiceAccountEmail,
		PrivateKey:          cfg.Google.PrivateKey,
		Endpoint:            cfg.Google.Endpoint,
		Timeout:             cfg.Google.Timeout,
	})
	cancel()
	if err != nil {
		logrus.Fatalf("%v", stocks.Initialization("Failed to initialize Google Sheets API", err))
	}
	logrus.WithField("service_account", cfg.Google.ServiceAccountEmail).Info("Google Sheets client ready")

	titles := sheets.NewTitleResolver(client, sheets.NewTitleCache())
	svc, err := stocks.NewService(client, titles, stocks.Config{
		DirectorySpreadsheetID: cfg.Google.SpreadsheetID,
		DirectorySheet:         cfg.Directory.Sheet,
		LinkColumn:             cfg.Directory.LinkColumn,
	})
	if err != nil {
		logrus.Fatalf("create stock service: %v", err)
	}

	server, err := api.NewServer(api.Config{
		Stocks:         svc,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		RateLimit:      cfg.RateLimitMax,
		RateWindow:     cfg.RateLimitWindow,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"directory_sheet": cfg.Directory.Sheet,
		"rate_limit":      cfg.RateLimitMax,
		"rate_window":     cfg.RateLimitWindow,
	}).Infof("starting sheet-news backend on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
