package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseListingDate parses a site-local publish date. It understands the
// relative words the site uses ("today", "yesterday") and falls back to
// dateparse for absolute dates, interpreted in now's location.
func ParseListingDate(text string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(s) {
	case "today", "just now":
		return day, nil
	case "yesterday":
		return day.AddDate(0, 0, -1), nil
	}

	t, err := dateparse.ParseIn(s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q: %w", s, err)
	}
	return t, nil
}
