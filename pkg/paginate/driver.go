package paginate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher is the interface the driver needs for single-page fetching.
type Fetcher interface {
	// FetchJSON fetches one URL and returns the decoded JSON body.
	FetchJSON(ctx context.Context, url string) (any, error)
}

// Driver discovers and fetches all pages of one paginated resource.
type Driver struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// NewDriver creates a pagination driver. Configuration errors fail here,
// before any request is made.
func NewDriver(fetcher Fetcher, config Config) (*Driver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}

	return &Driver{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "paginate").Logger(),
	}, nil
}

// Run fetches all pages of baseURL and streams results in completion order.
// The first page is fetched synchronously: its failure means nothing can be
// exported and is returned as an error. Every later page failure is emitted
// as a PageResult with Err set while its siblings proceed.
//
// The returned channel closes once every page has been attempted or the
// context is cancelled. After cancellation no new requests are issued.
func (d *Driver) Run(ctx context.Context, baseURL string) (<-chan PageResult, error) {
	switch d.config.Strategy {
	case LinkFollowing:
		return d.runLink(ctx, baseURL)
	default:
		return d.runOffset(ctx, baseURL)
	}
}

// runOffset implements the total/offset strategy with a bounded worker pool.
func (d *Driver) runOffset(ctx context.Context, baseURL string) (<-chan PageResult, error) {
	firstURL, err := offsetURL(baseURL, d.config, 0)
	if err != nil {
		return nil, err
	}

	first, err := d.fetchPage(ctx, PageRequest{URL: firstURL, Offset: 0})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	total, ok := d.resolveTotal(first.Signal, len(first.Items))
	if !ok {
		d.logger.Warn().
			Str("url", baseURL).
			Msg("Response exposes no total and no override is set; treating as single page")
	}

	offsets := remainingOffsets(total, d.config.PageSize)

	d.logger.Info().
		Str("url", baseURL).
		Int("total_items", total).
		Int("remaining_pages", len(offsets)).
		Msg("Starting parallel page fetch")

	results := make(chan PageResult, len(offsets)+1)
	results <- first

	// Single page optimization
	if len(offsets) == 0 {
		close(results)
		return results, nil
	}

	offsetQueue := make(chan int, len(offsets))
	for _, offset := range offsets {
		offsetQueue <- offset
	}
	close(offsetQueue)

	var wg sync.WaitGroup
	for i := 0; i < d.config.MaxConcurrency; i++ {
		wg.Add(1)
		go d.worker(ctx, baseURL, offsetQueue, results, &wg, i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// worker processes offsets from the queue until it drains or ctx is cancelled.
func (d *Driver) worker(ctx context.Context, baseURL string, offsetQueue <-chan int, results chan<- PageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for offset := range offsetQueue {
		// No new requests after cancellation
		select {
		case <-ctx.Done():
			d.logger.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageURL, err := offsetURL(baseURL, d.config, offset)
		if err != nil {
			results <- PageResult{Request: PageRequest{Offset: offset}, Err: err}
			continue
		}

		req := PageRequest{URL: pageURL, Offset: offset}
		result, err := d.fetchPage(ctx, req)
		if err != nil {
			d.logger.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("offset", offset).
				Msg("Page fetch failed")
			results <- PageResult{Request: req, Err: err}
			continue
		}

		results <- result
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		d.logger.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

// runLink implements the link-following strategy. The chain is sequential:
// each request depends on the previous response.
func (d *Driver) runLink(ctx context.Context, baseURL string) (<-chan PageResult, error) {
	first, err := d.fetchPage(ctx, PageRequest{URL: baseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	results := make(chan PageResult, 1)
	results <- first

	go func() {
		defer close(results)

		next := first.Signal.Next
		for next != "" {
			select {
			case <-ctx.Done():
				d.logger.Debug().Msg("Link chain stopping (context cancelled)")
				return
			default:
			}

			req := PageRequest{URL: next}
			result, err := d.fetchPage(ctx, req)
			if err != nil {
				// A broken link ends the chain; pages so far stand
				d.logger.Warn().Err(err).Str("url", next).Msg("Page fetch failed, stopping chain")
				results <- PageResult{Request: req, Err: err}
				return
			}

			results <- result
			next = result.Signal.Next
			if next != "" {
				d.logger.Debug().Str("url", next).Msg("Found next page")
			}
		}
	}()

	return results, nil
}

// fetchPage fetches and parses one page under the per-page timeout.
func (d *Driver) fetchPage(ctx context.Context, req PageRequest) (PageResult, error) {
	pageCtx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	decoded, err := d.fetcher.FetchJSON(pageCtx, req.URL)
	if err != nil {
		return PageResult{}, err
	}

	items, signal := parsePage(decoded, d.config)
	return PageResult{Request: req, Items: items, Signal: signal}, nil
}

// resolveTotal decides the total item count for the offset strategy.
// Priority: configured override, then the response signal, then the first
// page alone.
func (d *Driver) resolveTotal(signal Signal, firstPageLen int) (int, bool) {
	if d.config.TotalOverride > 0 {
		return d.config.TotalOverride, true
	}
	if signal.HasTotal {
		return signal.Total, true
	}
	return firstPageLen, false
}
