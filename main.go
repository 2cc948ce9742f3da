package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"vehicle-scraper/browser"
	"vehicle-scraper/config"
	"vehicle-scraper/models"
	"vehicle-scraper/scraper"
	"vehicle-scraper/scraper/riyasewana"
	"vehicle-scraper/services"
	"vehicle-scraper/storage"
	"vehicle-scraper/utils"
)

type pageFetcher interface {
	scraper.Fetcher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.LogColor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("Scraping job failed")
		stop()
		os.Exit(1)
	}
}

// run acquires the fetcher and the store for the whole crawl and releases
// both on every return path.
func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{
		"types":     len(cfg.VehicleTypes),
		"makes":     len(cfg.VehicleMakes),
		"batch":     cfg.BatchSize,
		"freshness": cfg.FreshnessDays,
		"fetcher":   cfg.Fetcher,
	}).Info("Scraper starting")

	fetcher, err := newFetcher(cfg, log)
	if err != nil {
		return fmt.Errorf("%w: %w", scraper.ErrSetup, err)
	}
	defer fetcher.Close()

	store, err := storage.NewPostgres(ctx, cfg.DSN(), utils.Component(log, "storage"))
	if err != nil {
		return fmt.Errorf("%w: %w", scraper.ErrSetup, err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("%w: %w", scraper.ErrSetup, err)
	}

	site := riyasewana.New(cfg.BaseURL, utils.Component(log, "extract"))
	crawler := scraper.New(site, fetcher, store, scraper.Options{
		Makes:         cfg.VehicleMakes,
		Types:         cfg.VehicleTypes,
		PageDelay:     scraper.Delay{Min: cfg.PageMinDelay, Max: cfg.PageMaxDelay},
		PostDelay:     scraper.Delay{Min: cfg.PostMinDelay, Max: cfg.PostMaxDelay},
		BatchSize:     cfg.BatchSize,
		Freshness:     cfg.FreshnessWindow(),
		FetchAttempts: cfg.FetchAttempts,
		RetryBackoff:  cfg.PageMinDelay,
	}, utils.Component(log, "crawler"))
	if cfg.EnableProgress {
		crawler.WithProgress(utils.NewProgressBar(os.Stderr, len(cfg.VehicleMakes)*len(cfg.VehicleTypes)))
	}

	log.Info("Starting scraping job...")
	listings, err := crawler.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		log.Warn("Scraping interrupted, keeping listings collected so far")
	}
	log.Infof("Scraping job finished. %d new listings collected.", len(listings))

	if cfg.CSVPath != "" {
		exportCSV(context.WithoutCancel(ctx), cfg, store, listings, log)
	}

	services.PrintReport(os.Stdout, services.GenerateReport(listings, crawler.Stats()))
	return nil
}

func newFetcher(cfg *config.Config, log *logrus.Logger) (pageFetcher, error) {
	entry := utils.Component(log, "browser")
	if cfg.Fetcher == "http" {
		return browser.NewHTTP(cfg.RequestTimeout, entry), nil
	}
	chrome, err := browser.NewChrome(cfg.Headless, cfg.RequestTimeout, entry)
	if err != nil {
		return nil, err
	}
	return chrome, nil
}

// exportCSV writes the run's listings, or the whole table with EXPORT_ALL.
// Export failures are logged; the crawl has already been persisted.
func exportCSV(ctx context.Context, cfg *config.Config, store *storage.Postgres, listings []models.Listing, log *logrus.Logger) {
	if cfg.ExportAll {
		all, err := store.FetchAll(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to load listings for export")
			return
		}
		listings = all
	}

	writer := storage.NewCSVWriter(cfg.CSVPath, utils.Component(log, "export"))
	if err := writer.Write(listings); err != nil {
		log.WithError(err).Error("Failed to save CSV")
	}
}
