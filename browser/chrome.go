package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Chrome renders pages in one headless Chrome session. The session lives
// from NewChrome until Close and is shared by every Fetch of the run.
type Chrome struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	log           *logrus.Entry
}

// LaunchOpts returns the Chrome flags used for crawling.
func LaunchOpts(headless bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1920, 1080),
	)
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	return opts
}

// NewChrome launches the browser. Failing to start it is a setup failure;
// nothing is left running in that case.
func NewChrome(headless bool, timeout time.Duration, log *logrus.Entry) (*Chrome, error) {
	log.Info("Launching Chrome browser...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), LaunchOpts(headless)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debugf("chrome: "+format, args...)
		}),
	)

	// An empty Run starts the browser so launch errors surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info("Browser ready")
	return &Chrome{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       timeout,
		log:           log,
	}, nil
}

// Fetch navigates the session's tab to url and returns the rendered markup.
// The caller is responsible for the politeness delay.
func (c *Chrome) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	runCtx, cancel := context.WithTimeout(c.browserCtx, c.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var markup string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v: %w", c.timeout, err)
		}
		return "", &FetchError{URL: url, Err: err}
	}
	return markup, nil
}

func (c *Chrome) Close() error {
	c.log.Info("Closing browser...")
	c.browserCancel()
	c.allocCancel()
	return nil
}
