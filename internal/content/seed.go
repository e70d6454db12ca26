package content

import "time"

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedPosts returns the posts every store starts with.
func SeedPosts() []Post {
	return []Post{
		{
			Slug:      "hello-world",
			Title:     "Hello, world",
			Summary:   "Why this site exists.",
			Body:      "Waypoint renders every page on the server and swaps views over a live channel.",
			Tags:      []string{"meta"},
			Published: date("2026-01-12"),
		},
		{
			Slug:      "nested-layouts",
			Title:     "Nested layouts",
			Summary:   "Layouts wrap pages from the outside in.",
			Body:      "A route table is a tree. Every layout on the path to a page wraps it, outermost first.",
			Tags:      []string{"routing", "layouts"},
			Published: date("2026-02-03"),
		},
		{
			Slug:      "stale-loaders",
			Title:     "Stale loaders",
			Summary:   "What happens when you click faster than the database.",
			Body:      "Each navigation gets a generation. Results from an older generation are dropped.",
			Tags:      []string{"loaders", "concurrency"},
			Published: date("2026-03-21"),
		},
		{
			Slug:      "wildcards",
			Title:     "Wildcards last",
			Summary:   "How the matcher ranks routes.",
			Body:      "Static segments beat typed parameters, which beat plain parameters, which beat wildcards.",
			Tags:      []string{"routing"},
			Published: date("2026-04-09"),
		},
	}
}

// SeedLessons returns the lessons every store starts with.
func SeedLessons() []Lesson {
	return []Lesson{
		{ID: 1, Track: TrackBasics, Order: 1, Title: "Routes", Duration: 5 * time.Minute,
			Body: "Declare pages, indexes and wildcards under layouts."},
		{ID: 2, Track: TrackBasics, Order: 2, Title: "Layouts", Duration: 7 * time.Minute,
			Body: "A layout receives its child as a slot."},
		{ID: 3, Track: TrackBasics, Order: 3, Title: "Links", Duration: 4 * time.Minute,
			Body: "Build hrefs from patterns so they never drift from the table."},
		{ID: 10, Track: TrackAdvanced, Order: 1, Title: "Loaders", Duration: 9 * time.Minute,
			Body: "Loaders fetch data before a page renders and are cancelled when you navigate away."},
		{ID: 11, Track: TrackAdvanced, Order: 2, Title: "Caching", Duration: 8 * time.Minute,
			Body: "The query cache collapses concurrent fetches and serves fresh entries."},
		{ID: 12, Track: TrackAdvanced, Order: 3, Title: "Live navigation", Duration: 11 * time.Minute,
			Body: "The browser asks for a path; the server answers with pending and settled renders."},
	}
}
