// Package export drives the fetch -> paginate -> transform -> sink pipeline
// for one or more logical resources.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/criscriscristof/pagestream/pkg/paginate"
	"github.com/criscriscristof/pagestream/pkg/sink"
	"github.com/criscriscristof/pagestream/pkg/transform"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Job describes one logical resource: one paginated endpoint exported to
// one CSV file.
type Job struct {
	// Name identifies the job in logs and stats
	Name string

	// BaseURL is the resource endpoint
	BaseURL string

	// Paginate configures page discovery for this resource
	Paginate paginate.Config

	// Projection maps raw items onto output columns
	Projection *transform.Projection

	// OutPath is the CSV file to create/truncate
	OutPath string
}

// Stats summarizes one finished job.
type Stats struct {
	PagesOK     int
	PagesFailed int
	Rows        int
}

// Exporter runs export jobs against a shared page fetcher.
type Exporter struct {
	fetcher paginate.Fetcher
	logger  zerolog.Logger
}

// New creates an exporter.
func New(fetcher paginate.Fetcher) *Exporter {
	return &Exporter{
		fetcher: fetcher,
		logger:  log.With().Str("component", "export").Logger(),
	}
}

// Run executes one job: pages stream through the projection into the sink
// as they complete. Failed pages are skipped and counted; configuration
// errors, a failed first page, and sink errors are fatal. Rows already
// written are preserved on disk whenever the run aborts.
func (e *Exporter) Run(ctx context.Context, job Job) (Stats, error) {
	var stats Stats

	if job.Projection == nil {
		return stats, fmt.Errorf("job %q: projection is required", job.Name)
	}
	if job.OutPath == "" {
		return stats, fmt.Errorf("job %q: output path is required", job.Name)
	}

	driver, err := paginate.NewDriver(e.fetcher, job.Paginate)
	if err != nil {
		return stats, fmt.Errorf("job %q: %w", job.Name, err)
	}

	// The output file exists (empty) from the start of the run
	csvSink, err := sink.NewCSVSink(job.OutPath)
	if err != nil {
		return stats, fmt.Errorf("job %q: %w", job.Name, err)
	}
	out := sink.NewCountingSink(csvSink)
	defer out.Close()

	start := time.Now()

	results, err := driver.Run(ctx, job.BaseURL)
	if err != nil {
		return stats, fmt.Errorf("job %q: %w", job.Name, err)
	}

	for result := range results {
		if result.Err != nil {
			stats.PagesFailed++
			PagesTotal.WithLabelValues(job.Name, "failed").Inc()
			e.logger.Warn().
				Err(result.Err).
				Str("job", job.Name).
				Str("url", result.Request.URL).
				Msg("Page failed, skipping")
			continue
		}
		stats.PagesOK++
		PagesTotal.WithLabelValues(job.Name, "ok").Inc()

		rows := job.Projection.ApplyAll(result.Items)
		if len(rows) == 0 {
			continue
		}

		// Header goes out lazily, once, before the first row
		if !out.HeaderWritten() {
			if err := out.WriteHeader(job.Projection.Columns()); err != nil {
				return stats, fmt.Errorf("job %q: %w", job.Name, err)
			}
		}

		if err := out.WriteRows(rows); err != nil {
			stats.Rows = out.Rows()
			return stats, fmt.Errorf("job %q: %w", job.Name, err)
		}
		stats.Rows = out.Rows()
		RowsTotal.WithLabelValues(job.Name).Add(float64(len(rows)))

		e.logger.Debug().
			Str("job", job.Name).
			Int("offset", result.Request.Offset).
			Int("rows", stats.Rows).
			Msg("Wrote page")
	}

	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("job %q: %w", job.Name, err)
	}

	JobDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())

	e.logger.Info().
		Str("job", job.Name).
		Int("pages_ok", stats.PagesOK).
		Int("pages_failed", stats.PagesFailed).
		Int("rows", stats.Rows).
		Dur("duration", time.Since(start)).
		Msg("Export complete")

	return stats, nil
}

// RunAll executes independent jobs concurrently, each with its own sink.
// All jobs run to completion; their errors are joined.
func (e *Exporter) RunAll(ctx context.Context, jobs []Job) (map[string]Stats, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		allStats = make(map[string]Stats, len(jobs))
		errs     = make([]error, len(jobs))
	)

	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			stats, err := e.Run(ctx, job)
			mu.Lock()
			allStats[job.Name] = stats
			errs[i] = err
			mu.Unlock()
		}(i, job)
	}
	wg.Wait()

	return allStats, errors.Join(errs...)
}
