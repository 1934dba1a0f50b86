package integration

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/criscriscristof/pagestream/internal/testutil"
	"github.com/criscriscristof/pagestream/pkg/export"
	"github.com/criscriscristof/pagestream/pkg/fetch"
	"github.com/criscriscristof/pagestream/pkg/paginate"
	"github.com/criscriscristof/pagestream/pkg/transform"
)

func newExporter(t *testing.T) *export.Exporter {
	t.Helper()

	client, err := fetch.New(fetch.DefaultConfig())
	if err != nil {
		t.Fatalf("fetch.New failed: %v", err)
	}
	return export.New(client)
}

func productsJob(t *testing.T, baseURL, outPath string) export.Job {
	t.Helper()

	proj, err := transform.FromKeys([]string{"id", "title", "price"})
	if err != nil {
		t.Fatalf("FromKeys failed: %v", err)
	}

	cfg := paginate.DefaultConfig()
	cfg.ItemsKey = "items"

	return export.Job{
		Name:       "products",
		BaseURL:    baseURL,
		Paginate:   cfg,
		Projection: proj,
		OutPath:    outPath,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// Base URL with total=45 and page_size=20 yields exactly 3 requests
// (offsets 0, 20, 40), 45 rows, and one header at the top.
func TestEndToEnd_TotalOffset(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{Total: 45, PageSize: 20})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := productsJob(t, mock.URL()+"/products", outPath)

	stats, err := newExporter(t).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if count := mock.GetRequestCount(); count != 3 {
		t.Errorf("requests = %d, want 3", count)
	}
	if stats.Rows != 45 {
		t.Errorf("rows = %d, want 45", stats.Rows)
	}

	lines := readLines(t, outPath)
	if len(lines) != 46 {
		t.Fatalf("lines = %d, want 46", len(lines))
	}
	if lines[0] != "id,title,price" {
		t.Errorf("header = %q, want %q", lines[0], "id,title,price")
	}
	for _, line := range lines[1:] {
		if line == lines[0] {
			t.Error("header appears more than once")
			break
		}
	}
}

// Scrambled per-page delays change only the order rows are written, never
// the set of rows.
func TestEndToEnd_CompletionOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var baseline map[string]bool
	for run := 0; run < 3; run++ {
		mock := testutil.NewMockAPI()
		delays := make(map[int]time.Duration)
		for offset := 0; offset < 100; offset += 20 {
			delays[offset] = time.Duration(rng.Intn(40)) * time.Millisecond
		}
		mock.SetOffsetResource("/products", testutil.OffsetResource{
			Total:    100,
			PageSize: 20,
			DelayFor: delays,
		})

		outPath := filepath.Join(t.TempDir(), "products.csv")
		job := productsJob(t, mock.URL()+"/products", outPath)

		if _, err := newExporter(t).Run(context.Background(), job); err != nil {
			t.Fatalf("run %d failed: %v", run, err)
		}

		lines := readLines(t, outPath)
		rows := make(map[string]bool, len(lines)-1)
		for _, line := range lines[1:] {
			rows[line] = true
		}
		mock.Close()

		if baseline == nil {
			baseline = rows
			continue
		}
		if len(rows) != len(baseline) {
			t.Fatalf("run %d wrote %d distinct rows, baseline %d", run, len(rows), len(baseline))
		}
		for row := range baseline {
			if !rows[row] {
				t.Errorf("run %d is missing row %q", run, row)
			}
		}
	}
}

// A single failing page out of five leaves 4 pages of rows in the sink and
// the run exits successfully.
func TestEndToEnd_PartialFailure(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{
		Total:       100,
		PageSize:    20,
		FailOffsets: map[int]bool{40: true},
	})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := productsJob(t, mock.URL()+"/products", outPath)

	stats, err := newExporter(t).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run should succeed with 4/5 pages: %v", err)
	}

	if stats.PagesOK != 4 || stats.PagesFailed != 1 {
		t.Errorf("pages ok/failed = %d/%d, want 4/1", stats.PagesOK, stats.PagesFailed)
	}

	lines := readLines(t, outPath)
	if len(lines) != 81 {
		t.Errorf("lines = %d, want 81 (header + 80 rows)", len(lines))
	}

	// The failed page's ids (41..60) must be absent
	seen := make(map[int]bool)
	for _, line := range lines[1:] {
		id, err := strconv.Atoi(strings.SplitN(line, ",", 2)[0])
		if err != nil {
			t.Fatalf("unparseable row %q: %v", line, err)
		}
		seen[id] = true
	}
	for id := 41; id <= 60; id++ {
		if seen[id] {
			t.Errorf("row %d belongs to the failed page", id)
		}
	}
}

// Cancelling mid-run closes the sink cleanly: the file holds a readable
// header plus whole rows, nothing torn.
func TestEndToEnd_CancellationPreservesOutput(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{
		Total:    400,
		PageSize: 20,
		Delay:    30 * time.Millisecond,
	})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := productsJob(t, mock.URL()+"/products", outPath)
	job.Paginate.MaxConcurrency = 2

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	stats, err := newExporter(t).Run(ctx, job)
	if err != nil {
		t.Fatalf("cancelled run should still close cleanly: %v", err)
	}

	lines := readLines(t, outPath)
	if len(lines) == 0 {
		t.Fatal("some pages should have been written before cancellation")
	}
	if lines[0] != "id,title,price" {
		t.Errorf("header = %q, want %q", lines[0], "id,title,price")
	}
	if got := len(lines) - 1; got != stats.Rows {
		t.Errorf("file rows = %d, stats rows = %d", got, stats.Rows)
	}
	for _, line := range lines[1:] {
		if strings.Count(line, ",") != 2 {
			t.Errorf("torn row %q", line)
		}
	}
}
