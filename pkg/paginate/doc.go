// Package paginate discovers and fetches all pages of a paginated JSON API.
//
// Two strategies are supported:
//
//   - TotalOffset: the first response carries a total item count. The driver
//     computes every remaining offset up front and fans the requests out
//     across a bounded worker pool. Results stream in completion order.
//   - LinkFollowing: each response carries the URL of the next page. The
//     chain is inherently sequential, one page at a time.
//
// Example usage:
//
//	cfg := paginate.DefaultConfig()
//	cfg.PageSize = 20
//	cfg.ItemsKey = "products"
//	driver, err := paginate.NewDriver(fetchClient, cfg)
//	results, err := driver.Run(ctx, "https://dummyjson.com/products")
//	for result := range results {
//		// pages arrive as they complete, not in offset order
//	}
//
// The driver:
//   - Fetches the first page to discover the pagination signal
//   - Spawns a worker pool (default 10 workers) for the remaining pages
//   - Emits every page result on a channel as soon as it completes
//   - Skips failed pages without cancelling their siblings
//
// Consumers must not assume page N arrives before page N+1; a failed first
// page is the only fatal fetch error.
package paginate
