package riyasewana

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"vehicle-scraper/models"
)

// CSS selectors for riyasewana.com search and post pages.
const (
	selResultsList  = "div#content ul"
	selListingItem  = "li.item.round"
	selTitleLink    = "h2 a"
	selImage        = "img"
	selDate         = "div.boxintxt.s"
	selBoxTexts     = "div.boxintxt"
	selDetailCells  = "td.aleft, td.aleft.ftin, td.aleft.tfiv"
	pageQueryFormat = "%s?page=%d"
)

// Site is the riyasewana.com implementation of scraper.Site.
type Site struct {
	baseURL string
	log     *logrus.Entry
}

func New(baseURL string, log *logrus.Entry) *Site {
	return &Site{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (s *Site) Name() string {
	return "riyasewana"
}

func (s *Site) SearchURL(pair models.SearchPair, page int) string {
	url := fmt.Sprintf("%s/search/%s/%s", s.baseURL, pair.Type, pair.Make)
	if page > 1 {
		url = fmt.Sprintf(pageQueryFormat, url, page)
	}
	return url
}

func (s *Site) Items(markup string) ([]*goquery.Selection, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		s.log.WithError(err).Warn("Could not parse search page")
		return nil, false
	}

	list := doc.Find(selResultsList).First()
	if list.Length() == 0 {
		return nil, false
	}

	var items []*goquery.Selection
	list.Find(selListingItem).Each(func(_ int, item *goquery.Selection) {
		items = append(items, item)
	})
	return items, true
}
