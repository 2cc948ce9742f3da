package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"vehicle-scraper/models"
)

// fakeSite reads a minimal markup: <ul class="results"><li data-url=.. data-date=..>title</li></ul>.
// A detail page's markup is stored verbatim in the Model field.
type fakeSite struct{}

func (fakeSite) Name() string { return "fake" }

func (fakeSite) SearchURL(pair models.SearchPair, page int) string {
	return fmt.Sprintf("search/%s/%s/%d", pair.Type, pair.Make, page)
}

func (fakeSite) Items(markup string) ([]*goquery.Selection, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, false
	}
	list := doc.Find("ul.results")
	if list.Length() == 0 {
		return nil, false
	}
	var items []*goquery.Selection
	list.Find("li").Each(func(_ int, s *goquery.Selection) {
		items = append(items, s)
	})
	return items, true
}

func (fakeSite) ExtractOverview(item *goquery.Selection) models.ListingOverview {
	url, _ := item.Attr("data-url")
	date, _ := item.Attr("data-date")
	return models.ListingOverview{Title: item.Text(), PostURL: url, Date: date}
}

func (fakeSite) ExtractDetail(markup string) models.ListingDetail {
	return models.ListingDetail{Model: markup}
}

func resultsPage(urls ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="results">`)
	for _, u := range urls {
		fmt.Fprintf(&b, `<li data-url="%s" data-date="2024-05-20">%s</li>`, u, u)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

type fakeFetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)

	mu    sync.Mutex
	calls []string
}

// newFakeFetcher serves pages by URL. Unknown search URLs get a page
// without results; any other URL is a detail page "model:<url>".
func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if page, ok := pages[url]; ok {
				return page, nil
			}
			if strings.HasPrefix(url, "search/") {
				return "<html><body></body></html>", nil
			}
			return "model:" + url, nil
		},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	return f.FetchFn(ctx, url)
}

func (f *fakeFetcher) searchCalls() []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, "search/") {
			out = append(out, c)
		}
	}
	return out
}

// fakeStore keeps inserted keys so repeated runs see them, like a table
// with a unique post_url.
type fakeStore struct {
	ListKnownKeysFn func(ctx context.Context) (map[string]struct{}, error)
	InsertBatchFn   func(ctx context.Context, listings []models.Listing) (int, error)

	keys    map[string]struct{}
	batches [][]models.Listing
}

func newFakeStore(known ...string) *fakeStore {
	s := &fakeStore{keys: make(map[string]struct{})}
	for _, k := range known {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *fakeStore) ListKnownKeys(ctx context.Context) (map[string]struct{}, error) {
	if s.ListKnownKeysFn != nil {
		return s.ListKnownKeysFn(ctx)
	}
	out := make(map[string]struct{}, len(s.keys))
	for k := range s.keys {
		out[k] = struct{}{}
	}
	return out, nil
}

func (s *fakeStore) InsertBatch(ctx context.Context, listings []models.Listing) (int, error) {
	s.batches = append(s.batches, append([]models.Listing(nil), listings...))
	if s.InsertBatchFn != nil {
		return s.InsertBatchFn(ctx, listings)
	}
	n := 0
	for _, l := range listings {
		if _, ok := s.keys[l.PostURL]; !ok {
			s.keys[l.PostURL] = struct{}{}
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) batchURLs() [][]string {
	var out [][]string
	for _, b := range s.batches {
		out = append(out, postURLs(b))
	}
	return out
}

func postURLs(listings []models.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.PostURL)
	}
	return out
}

type sleepCall struct {
	min, max time.Duration
}

type fakeProgress struct {
	ticks []models.SearchPair
}

func (p *fakeProgress) Tick(pair models.SearchPair) {
	p.ticks = append(p.ticks, pair)
}

var testNow = time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC)

// newTestCrawler returns a crawler that never sleeps and whose clock is testNow.
func newTestCrawler(fetcher Fetcher, store Store, opts Options) (*Crawler, *test.Hook, *[]sleepCall) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	if opts.BatchSize == 0 {
		opts.BatchSize = 50
	}
	c := New(fakeSite{}, fetcher, store, opts, logrus.NewEntry(logger))

	sleeps := &[]sleepCall{}
	c.sleep = func(_ context.Context, min, max time.Duration) error {
		*sleeps = append(*sleeps, sleepCall{min, max})
		return nil
	}
	c.now = func() time.Time { return testNow }
	return c, hook, sleeps
}
