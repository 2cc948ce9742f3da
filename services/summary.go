package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"vehicle-scraper/models"
	"vehicle-scraper/scraper"
)

type Report struct {
	TotalListings   int
	Inserted        int
	Dropped         int
	Pages           int
	PageErrors      int
	DetailFailures  int
	WithDetail      int
	WithPrice       int
	WithMileage     int
	ListingsByMake  map[string]int
	ListingsByType  map[string]int
	TopLocations    []LocationCount
	MissingLocation int
}

type LocationCount struct {
	Location string
	Count    int
}

// GenerateReport summarises the listings a run recorded and its counters.
func GenerateReport(listings []models.Listing, stats scraper.Stats) Report {
	report := Report{
		TotalListings:  len(listings),
		Inserted:       stats.Inserted,
		Dropped:        stats.Dropped,
		Pages:          stats.Pages,
		PageErrors:     stats.PageErrors,
		DetailFailures: stats.DetailFailures,
		ListingsByMake: make(map[string]int),
		ListingsByType: make(map[string]int),
	}

	locations := make(map[string]int)
	for _, l := range listings {
		report.ListingsByMake[l.Make]++
		report.ListingsByType[l.Type]++

		if !l.ListingDetail.IsEmpty() {
			report.WithDetail++
		}
		if strings.TrimSpace(l.OverviewPrice) != "" || strings.TrimSpace(l.DetailPrice) != "" {
			report.WithPrice++
		}
		if strings.TrimSpace(l.Mileage) != "" {
			report.WithMileage++
		}

		location := strings.TrimSpace(l.Location)
		if location == "" {
			report.MissingLocation++
			continue
		}
		locations[location]++
	}

	for loc, n := range locations {
		report.TopLocations = append(report.TopLocations, LocationCount{Location: loc, Count: n})
	}
	sort.Slice(report.TopLocations, func(i, j int) bool {
		if report.TopLocations[i].Count == report.TopLocations[j].Count {
			return report.TopLocations[i].Location < report.TopLocations[j].Location
		}
		return report.TopLocations[i].Count > report.TopLocations[j].Count
	})
	if len(report.TopLocations) > 5 {
		report.TopLocations = report.TopLocations[:5]
	}

	return report
}

func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                        Crawl Summary                         │")
	fmt.Fprintln(w, "├───────────────────────────────┬──────────────────────────────┤")
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "New Listings Recorded", report.TotalListings)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Inserted Into Storage", report.Inserted)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Lost To Failed Batches", report.Dropped)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Search Pages Fetched", report.Pages)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Search Page Errors", report.PageErrors)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Detail Page Failures", report.DetailFailures)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "With Detail Fields", report.WithDetail)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "With Price", report.WithPrice)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "With Mileage", report.WithMileage)
	fmt.Fprintln(w, "└───────────────────────────────┴──────────────────────────────┘")

	printCounts(w, "Listings per Make", report.ListingsByMake)
	printCounts(w, "Listings per Type", report.ListingsByType)

	if len(report.TopLocations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "┌─────┬──────────────────────────────────────────────┬──────────┐")
		fmt.Fprintln(w, "│ #   │ Top Locations                                │ Count    │")
		fmt.Fprintln(w, "├─────┼──────────────────────────────────────────────┼──────────┤")
		for i, lc := range report.TopLocations {
			fmt.Fprintf(w, "│ %-3d │ %-44s │ %-8d │\n", i+1, truncateText(lc.Location, 44), lc.Count)
		}
		fmt.Fprintln(w, "└─────┴──────────────────────────────────────────────┴──────────┘")
	}
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Fprintf(w, "│ %-44s │ %-13s │\n", title, "Count")
	fmt.Fprintln(w, "├──────────────────────────────────────────────┼───────────────┤")
	for _, k := range sortedKeys(counts) {
		fmt.Fprintf(w, "│ %-44s │ %-13d │\n", truncateText(k, 44), counts[k])
	}
	fmt.Fprintln(w, "└──────────────────────────────────────────────┴───────────────┘")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
