package scraper

import (
	"context"

	"github.com/sirupsen/logrus"

	"vehicle-scraper/models"
)

// PageState is the pagination state of one (make, type) pair.
type PageState int

const (
	StateFetching PageState = iota
	StateHasResults
	StateNoResults
	StateFetchError
	StateCancelled
)

func (s PageState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateHasResults:
		return "has_results"
	case StateNoResults:
		return "no_results"
	case StateFetchError:
		return "fetch_error"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// crawlPair pages through the results for pair until a terminal state and
// returns that state. Neither terminal state aborts the crawl.
//
// A page with no new listings ends the pair. That assumes novelty only
// decreases with page number; a site that reorders results between loads
// can end a pair early.
func (c *Crawler) crawlPair(ctx context.Context, pair models.SearchPair) PageState {
	log := c.log.WithFields(logrus.Fields{"make": pair.Make, "type": pair.Type})
	log.Info("Starting scrape")

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return StateCancelled
		}
		state := c.crawlPage(ctx, pair, page, log.WithField("page", page))
		if state != StateHasResults {
			log.WithFields(logrus.Fields{"pages": page, "state": state}).Info("Pagination finished")
			return state
		}
	}
}

func (c *Crawler) crawlPage(ctx context.Context, pair models.SearchPair, page int, log *logrus.Entry) PageState {
	url := c.site.SearchURL(pair, page)
	log.WithField("url", url).Info("Visiting listing page")

	markup, err := c.fetch(ctx, url, c.opts.PageDelay)
	c.stats.Pages++
	if err != nil {
		c.stats.PageErrors++
		log.WithError(err).Error("Failed to load listing page")
		return StateFetchError
	}

	items, found := c.site.Items(markup)
	if !found {
		log.Info("No results container, end of pages")
		return StateNoResults
	}
	if len(items) == 0 {
		log.Info("No listing items found, end of pages")
		return StateNoResults
	}

	recorded := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return StateCancelled
		}
		if c.processItem(ctx, pair, item, log) {
			recorded++
		}
	}

	if recorded == 0 {
		log.Info("No new unique listings on page, ending pagination")
		return StateNoResults
	}
	log.WithField("new", recorded).Debug("Page done")
	return StateHasResults
}
