package models

// ListingOverview is what a search-results page shows for one listing.
// Every field is free text; an unmatched field is the empty string.
type ListingOverview struct {
	Title         string
	PostURL       string
	ImageURL      string
	Date          string
	Location      string
	OverviewPrice string
	Mileage       string
}

// ListingDetail is the attribute table of a listing's own page, reduced
// to the fields we persist.
type ListingDetail struct {
	EngineCC    string
	YOM         string
	PostMake    string
	Model       string
	DetailPrice string
	Gear        string
	FuelType    string
}

// IsEmpty reports whether no detail field was extracted.
func (d ListingDetail) IsEmpty() bool {
	return d == ListingDetail{}
}

// SearchPair is the (make, type) search context a listing was found under.
type SearchPair struct {
	Make string
	Type string
}

func (p SearchPair) String() string {
	return p.Type + "/" + p.Make
}

// Listing is the persisted unit. PostURL is the natural key.
type Listing struct {
	ListingOverview
	ListingDetail
	Make string
	Type string
}

// NewListing fuses an overview and a detail under the search context.
// Make and Type always come from the pair, never from the page.
func NewListing(o ListingOverview, d ListingDetail, pair SearchPair) Listing {
	return Listing{
		ListingOverview: o,
		ListingDetail:   d,
		Make:            pair.Make,
		Type:            pair.Type,
	}
}

// Columns is the persisted column order, shared by the Postgres and CSV writers.
var Columns = []string{
	"date", "make", "type", "title", "location", "mileage",
	"overview_price", "detail_price", "engine_cc", "yom",
	"post_make", "model", "gear", "fuel_type", "post_url", "image_url",
}

// Row returns the listing's values in Columns order.
func (l Listing) Row() []string {
	return []string{
		l.Date, l.Make, l.Type, l.Title, l.Location, l.Mileage,
		l.OverviewPrice, l.DetailPrice, l.EngineCC, l.YOM,
		l.PostMake, l.Model, l.Gear, l.FuelType, l.PostURL, l.ImageURL,
	}
}
