package scraper

import "errors"

// ErrSetup marks failures that abort a run before any page is fetched.
var ErrSetup = errors.New("crawl setup failed")
