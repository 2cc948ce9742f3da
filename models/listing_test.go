package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewListing(t *testing.T) {
	t.Parallel()

	o := ListingOverview{Title: "Axio", PostURL: "u1"}
	d := ListingDetail{PostMake: "Toyota", Model: "Axio"}

	l := NewListing(o, d, SearchPair{Make: "toyota", Type: "cars"})

	assert.Equal(t, o, l.ListingOverview)
	assert.Equal(t, d, l.ListingDetail)
	assert.Equal(t, "toyota", l.Make)
	assert.Equal(t, "cars", l.Type)
	assert.Equal(t, "Toyota", l.PostMake)
}

func TestListing_Row(t *testing.T) {
	t.Parallel()

	l := Listing{
		ListingOverview: ListingOverview{
			Title: "title", PostURL: "post", ImageURL: "image", Date: "date",
			Location: "location", OverviewPrice: "overview_price", Mileage: "mileage",
		},
		ListingDetail: ListingDetail{
			EngineCC: "engine_cc", YOM: "yom", PostMake: "post_make", Model: "model",
			DetailPrice: "detail_price", Gear: "gear", FuelType: "fuel_type",
		},
		Make: "make",
		Type: "type",
	}

	row := l.Row()

	assert.Len(t, row, len(Columns))
	for i, col := range Columns {
		want := col
		switch col {
		case "post_url":
			want = "post"
		case "image_url":
			want = "image"
		}
		assert.Equal(t, want, row[i], "column %s", col)
	}
}

func TestListingDetail_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, ListingDetail{}.IsEmpty())
	assert.False(t, ListingDetail{Gear: "Manual"}.IsEmpty())
}

func TestSearchPair_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cars/toyota", SearchPair{Make: "toyota", Type: "cars"}.String())
}
