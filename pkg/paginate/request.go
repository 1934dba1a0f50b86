package paginate

// PageRequest is an immutable fetch target for one page.
type PageRequest struct {
	// URL is the fully built request URL
	URL string

	// Offset is the item offset this page starts at (offset strategy only)
	Offset int
}

// Signal carries the pagination information extracted from one response.
type Signal struct {
	// Next is the URL of the next page ("" when none)
	Next string

	// Total is the total item count reported by the API
	Total int

	// HasTotal reports whether the response exposed a total at all
	HasTotal bool
}

// PageResult represents the outcome of fetching a single page.
// Either Items/Signal are populated or Err is set.
type PageResult struct {
	Request PageRequest
	Items   []map[string]any
	Signal  Signal
	Err     error
}
