package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTP fetches raw server markup without rendering. It suits pages that do
// not need JavaScript and is far lighter than a browser session.
type HTTP struct {
	collector *colly.Collector
	log       *logrus.Entry
}

func NewHTTP(timeout time.Duration, log *logrus.Entry) *HTTP {
	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)
	c.OnRequest(func(r *colly.Request) {
		log.WithField("url", r.URL.String()).Trace("HTTP request")
	})

	return &HTTP{collector: c, log: log}
}

func (h *HTTP) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	// Clones share the transport but not callbacks, so each call captures
	// only its own response.
	c := h.collector.Clone()
	c.Context = ctx
	var (
		body     string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return "", &FetchError{URL: url, Err: fetchErr}
	}
	return body, nil
}

func (h *HTTP) Close() error {
	return nil
}
