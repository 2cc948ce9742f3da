package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

// Delay is the range a politeness pause is drawn from after each fetch.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

type Options struct {
	Makes     []string
	Types     []string
	PageDelay Delay
	PostDelay Delay
	BatchSize int
	// Freshness is the maximum listing age. Zero disables the date filter.
	Freshness time.Duration
	// FetchAttempts above 1 retries failed fetches with exponential backoff.
	FetchAttempts int
	RetryBackoff  time.Duration
}

// Stats counts what one run did.
type Stats struct {
	Pairs          int
	Pages          int
	PageErrors     int
	Listings       int
	DetailFailures int
	SkippedStale   int
	SkippedDate    int
	Flushes        int
	Inserted       int
	Dropped        int
}

// Crawler is single threaded: one fetch at a time, each followed by a
// random delay. The ledger and the pending batch belong to the goroutine
// calling Run.
type Crawler struct {
	site     Site
	fetcher  Fetcher
	store    Store
	opts     Options
	log      *logrus.Entry
	progress Progress

	sleep func(ctx context.Context, min, max time.Duration) error
	now   func() time.Time

	ledger  *Ledger
	batch   *batcher
	results []models.Listing
	stats   Stats
}

func New(site Site, fetcher Fetcher, store Store, opts Options, log *logrus.Entry) *Crawler {
	return &Crawler{
		site:     site,
		fetcher:  fetcher,
		store:    store,
		opts:     opts,
		log:      log.WithField("site", site.Name()),
		progress: noProgress{},
		sleep:    utils.RandomDelay,
		now:      time.Now,
	}
}

// WithProgress reports each finished pair to p.
func (c *Crawler) WithProgress(p Progress) *Crawler {
	if p != nil {
		c.progress = p
	}
	return c
}

// Run crawls every make x type pair, make-major, and returns the listings
// it recorded. Some of them may have been ignored by storage as duplicates
// or lost to a failed flush; see Stats.
//
// Only a failure to seed the ledger is returned as an error, wrapped in
// ErrSetup. Cancelling ctx stops the run before the next page or listing;
// the pending batch is still flushed and ctx.Err() is returned with the
// listings recorded so far.
func (c *Crawler) Run(ctx context.Context) ([]models.Listing, error) {
	known, err := c.store.ListKnownKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading known listing URLs: %w", ErrSetup, err)
	}
	c.ledger = NewLedger(known)
	c.batch = newBatcher(c.store, c.opts.BatchSize, c.log)
	c.results = nil
	c.stats = Stats{}
	c.log.Infof("Loaded %d existing URLs from storage", c.ledger.Len())

	var runErr error
pairs:
	for _, vehicleMake := range c.opts.Makes {
		for _, vehicleType := range c.opts.Types {
			if err := ctx.Err(); err != nil {
				runErr = err
				break pairs
			}
			pair := models.SearchPair{Make: vehicleMake, Type: vehicleType}
			// A pair interrupted by cancellation is not finished and gets no tick.
			if state := c.crawlPair(ctx, pair); state == StateCancelled || ctx.Err() != nil {
				runErr = ctx.Err()
				break pairs
			}
			c.stats.Pairs++
			c.progress.Tick(pair)
		}
	}

	c.batch.Flush(context.WithoutCancel(ctx))
	c.stats.Flushes = c.batch.flushes
	c.stats.Inserted = c.batch.inserted
	c.stats.Dropped = c.batch.dropped

	c.log.WithFields(logrus.Fields{
		"listings": len(c.results),
		"inserted": c.stats.Inserted,
		"dropped":  c.stats.Dropped,
	}).Info("Crawl completed")
	return c.results, runErr
}

// Stats returns the counters of the last Run.
func (c *Crawler) Stats() Stats {
	return c.stats
}

// Ledger returns the ledger of the last Run, nil before the first.
func (c *Crawler) Ledger() *Ledger {
	return c.ledger
}

// processItem handles one listing fragment and reports whether a listing
// was recorded.
func (c *Crawler) processItem(ctx context.Context, pair models.SearchPair, item *goquery.Selection, log *logrus.Entry) bool {
	overview := c.site.ExtractOverview(item)
	postURL := overview.PostURL
	if postURL == "" || !c.ledger.IsNew(postURL) {
		log.WithField("url", postURL).Trace("Skipping already seen or invalid URL")
		return false
	}
	log = log.WithField("url", postURL)

	if c.opts.Freshness > 0 && !c.isFresh(overview.Date, log) {
		return false
	}

	if !c.ledger.MarkIfNew(postURL) {
		return false
	}

	log.Debug("Visiting post")
	detail, err := c.fetchDetail(ctx, postURL)
	if err != nil {
		c.stats.DetailFailures++
		log.WithError(err).Error("Error processing detail page")
	}

	listing := models.NewListing(overview, detail, pair)
	c.results = append(c.results, listing)
	c.stats.Listings++
	c.batch.Add(ctx, listing)
	return true
}

func (c *Crawler) isFresh(date string, log *logrus.Entry) bool {
	now := c.now()
	published, err := utils.ParseListingDate(date, now)
	if err != nil {
		c.stats.SkippedDate++
		log.WithError(err).Warn("Skipping listing with unparseable date")
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if published.Before(today.Add(-c.opts.Freshness)) {
		c.stats.SkippedStale++
		log.WithField("date", date).Debug("Skipping listing older than freshness window")
		return false
	}
	return true
}

// fetchDetail fetches and extracts a detail page. On error the detail is
// empty and the listing is still recorded.
func (c *Crawler) fetchDetail(ctx context.Context, postURL string) (models.ListingDetail, error) {
	markup, err := c.fetch(ctx, postURL, c.opts.PostDelay)
	if err != nil {
		return models.ListingDetail{}, err
	}
	return c.site.ExtractDetail(markup), nil
}

// fetch gets url and then waits the politeness delay, whatever the outcome.
func (c *Crawler) fetch(ctx context.Context, url string, delay Delay) (string, error) {
	var markup string
	err := utils.Retry(ctx, c.opts.FetchAttempts, c.opts.RetryBackoff, c.log, func() error {
		var err error
		markup, err = c.fetcher.Fetch(ctx, url)
		// An interrupted delay shows up as ctx.Err() at the next loop check.
		_ = c.sleep(ctx, delay.Min, delay.Max)
		return err
	})
	return markup, err
}
