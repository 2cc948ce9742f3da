package riyasewana

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

// Detail table labels, lower-cased.
const (
	labelEngine   = "engine (cc)"
	labelYOM      = "yom"
	labelMake     = "make"
	labelModel    = "model"
	labelPrice    = "price"
	labelGear     = "gear"
	labelFuelType = "fuel type"
)

// ExtractOverview reads one search-result item. The text boxes carry no
// labels, so they are classified by content: "km" is mileage, "rs" or
// "negotiable" is price, and the first other value is the location.
func (s *Site) ExtractOverview(item *goquery.Selection) models.ListingOverview {
	var o models.ListingOverview

	link := item.Find(selTitleLink).First()
	if link.Length() == 0 {
		s.log.Warn("Listing item has no title link")
	}
	o.Title = cleanText(link.Text())
	href, _ := link.Attr("href")
	o.PostURL = utils.ResolveURL(s.baseURL, href)
	if o.PostURL == "" && link.Length() > 0 {
		s.log.WithField("href", href).Warn("Listing title link has no usable href")
	}

	src, _ := item.Find(selImage).First().Attr("src")
	o.ImageURL = utils.ResolveURL(s.baseURL, src)

	date := item.Find(selDate).First()
	if date.Length() == 0 {
		s.log.WithField("url", o.PostURL).Warn("Listing item has no date")
	}
	o.Date = cleanText(date.Text())

	item.Find(selBoxTexts).Each(func(_ int, box *goquery.Selection) {
		txt := cleanText(box.Text())
		lower := strings.ToLower(txt)
		switch {
		case txt == "":
		case strings.Contains(lower, "km"):
			if o.Mileage == "" {
				o.Mileage = txt
			}
		case strings.Contains(lower, "rs") || strings.Contains(lower, "negotiable"):
			if o.OverviewPrice == "" {
				o.OverviewPrice = txt
			}
		case txt != o.OverviewPrice && txt != o.Mileage && txt != o.Date:
			if o.Location == "" {
				o.Location = txt
			}
		}
	})
	return o
}

// ExtractDetail reads the attribute table of a post page. Cells pair up
// label, value, label, value in document order; a trailing unpaired cell
// is ignored.
func (s *Site) ExtractDetail(markup string) models.ListingDetail {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		s.log.WithError(err).Warn("Could not parse post page")
		return models.ListingDetail{}
	}

	cells := doc.Find(selDetailCells)
	if cells.Length() == 0 {
		s.log.Warn("Post page has no attribute table")
		return models.ListingDetail{}
	}

	fields := make(map[string]string, cells.Length()/2)
	for i := 0; i+1 < cells.Length(); i += 2 {
		label := strings.ToLower(cleanText(cells.Eq(i).Text()))
		fields[label] = cleanText(cells.Eq(i + 1).Text())
	}

	return models.ListingDetail{
		EngineCC:    fields[labelEngine],
		YOM:         fields[labelYOM],
		PostMake:    fields[labelMake],
		Model:       fields[labelModel],
		DetailPrice: fields[labelPrice],
		Gear:        fields[labelGear],
		FuelType:    fields[labelFuelType],
	}
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
