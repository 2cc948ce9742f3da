// Package scraper drives an incremental crawl of a classifieds site: it
// walks every (make, type) search, pages through the results, follows new
// listings to their detail page and hands batches to storage.
//
// Everything site-specific sits behind Site, so adding a second site does
// not touch the orchestration.
package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"vehicle-scraper/models"
)

// Site is the capability set one classifieds site provides.
type Site interface {
	Name() string

	// SearchURL returns the results page for pair. Page numbering starts at 1.
	SearchURL(pair models.SearchPair, page int) string

	// Items returns the listing fragments on a results page in document
	// order. found is false when the page has no results container.
	Items(markup string) (items []*goquery.Selection, found bool)

	// ExtractOverview and ExtractDetail never fail; missing elements give
	// empty fields.
	ExtractOverview(item *goquery.Selection) models.ListingOverview
	ExtractDetail(markup string) models.ListingDetail
}

// Fetcher returns the rendered markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Store is the durable side of the ledger.
type Store interface {
	// ListKnownKeys returns every persisted post URL.
	ListKnownKeys(ctx context.Context) (map[string]struct{}, error)
	// InsertBatch inserts listings whose post URL is not yet stored and
	// returns how many were new. A failed call inserts nothing.
	InsertBatch(ctx context.Context, listings []models.Listing) (int, error)
}

// Progress receives one tick per completed (make, type) pair.
type Progress interface {
	Tick(pair models.SearchPair)
}

type noProgress struct{}

func (noProgress) Tick(models.SearchPair) {}
