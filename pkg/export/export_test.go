package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/criscriscristof/pagestream/internal/testutil"
	"github.com/criscriscristof/pagestream/pkg/fetch"
	"github.com/criscriscristof/pagestream/pkg/paginate"
	"github.com/criscriscristof/pagestream/pkg/transform"
)

func newExporter(t *testing.T) *Exporter {
	t.Helper()

	client, err := fetch.New(fetch.DefaultConfig())
	if err != nil {
		t.Fatalf("fetch.New failed: %v", err)
	}
	return New(client)
}

func testJob(t *testing.T, baseURL, outPath string) Job {
	t.Helper()

	proj, err := transform.FromKeys([]string{"id", "title"})
	if err != nil {
		t.Fatalf("FromKeys failed: %v", err)
	}

	cfg := paginate.DefaultConfig()
	cfg.ItemsKey = "items"

	return Job{
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

func TestExporter_Run(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{Total: 45, PageSize: 20})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := testJob(t, mock.URL()+"/products", outPath)

	stats, err := newExporter(t).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Rows != 45 {
		t.Errorf("Rows = %d, want 45", stats.Rows)
	}
	if stats.PagesOK != 3 {
		t.Errorf("PagesOK = %d, want 3", stats.PagesOK)
	}
	if stats.PagesFailed != 0 {
		t.Errorf("PagesFailed = %d, want 0", stats.PagesFailed)
	}
	if count := mock.GetRequestCount(); count != 3 {
		t.Errorf("requests = %d, want 3 (offsets 0, 20, 40)", count)
	}

	lines := readLines(t, outPath)
	if len(lines) != 46 {
		t.Fatalf("lines = %d, want 46 (header + 45 rows)", len(lines))
	}
	if lines[0] != "id,title" {
		t.Errorf("header = %q, want %q", lines[0], "id,title")
	}
}

// The header appears exactly once, as the first line, for any non-empty run.
func TestExporter_Run_HeaderInvariant(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{Total: 100, PageSize: 20})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := testJob(t, mock.URL()+"/products", outPath)

	if _, err := newExporter(t).Run(context.Background(), job); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lines := readLines(t, outPath)
	if lines[0] != "id,title" {
		t.Errorf("first line = %q, want the header", lines[0])
	}
	headerCount := 0
	for _, line := range lines {
		if line == "id,title" {
			headerCount++
		}
	}
	if headerCount != 1 {
		t.Errorf("header appears %d times, want exactly once", headerCount)
	}
}

// Given 5 pages where one always fails, the other 4 land in the sink and
// the run still reports success.
func TestExporter_Run_PartialFailure(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{
		Total:       100,
		PageSize:    20,
		FailOffsets: map[int]bool{40: true},
	})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := testJob(t, mock.URL()+"/products", outPath)

	stats, err := newExporter(t).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run should succeed despite one failed page: %v", err)
	}

	if stats.PagesOK != 4 {
		t.Errorf("PagesOK = %d, want 4", stats.PagesOK)
	}
	if stats.PagesFailed != 1 {
		t.Errorf("PagesFailed = %d, want 1", stats.PagesFailed)
	}
	if stats.Rows != 80 {
		t.Errorf("Rows = %d, want 80", stats.Rows)
	}

	lines := readLines(t, outPath)
	if len(lines) != 81 {
		t.Errorf("lines = %d, want 81 (header + 80 rows)", len(lines))
	}
}

// A zero-total resource is a valid empty run: no header, no rows, no error.
func TestExporter_Run_EmptyResource(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{Total: 0, PageSize: 20})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := testJob(t, mock.URL()+"/products", outPath)

	stats, err := newExporter(t).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Rows != 0 {
		t.Errorf("Rows = %d, want 0", stats.Rows)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file should exist: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("empty run should write nothing, got %q", data)
	}
}

func TestExporter_Run_FirstPageFailureIsFatal(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/products", testutil.MockResponse{StatusCode: 503})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := testJob(t, mock.URL()+"/products", outPath)

	if _, err := newExporter(t).Run(context.Background(), job); err == nil {
		t.Fatal("Run should fail when the first page cannot be fetched")
	}
}

func TestExporter_Run_ConfigErrorBeforeAnyRequest(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{Total: 10})

	outPath := filepath.Join(t.TempDir(), "products.csv")
	job := testJob(t, mock.URL()+"/products", outPath)
	job.Paginate.PageSize = 0

	if _, err := newExporter(t).Run(context.Background(), job); err == nil {
		t.Fatal("Run should fail for invalid page size")
	}
	if count := mock.GetRequestCount(); count != 0 {
		t.Errorf("requests = %d, want 0 before validation failure", count)
	}
}

func TestExporter_Run_LinkStrategy(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetLinkResource("/people", testutil.LinkResource{Pages: 3, PerPage: 10})

	proj, err := transform.FromKeys([]string{"id", "title"})
	if err != nil {
		t.Fatalf("FromKeys failed: %v", err)
	}

	cfg := paginate.DefaultConfig()
	cfg.Strategy = paginate.LinkFollowing
	cfg.ItemsKey = "results"

	outPath := filepath.Join(t.TempDir(), "people.csv")
	job := Job{
		Name:       "people",
		BaseURL:    mock.URL() + "/people",
		Paginate:   cfg,
		Projection: proj,
		OutPath:    outPath,
	}

	stats, err := newExporter(t).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Rows != 30 {
		t.Errorf("Rows = %d, want 30", stats.Rows)
	}
	if stats.PagesOK != 3 {
		t.Errorf("PagesOK = %d, want 3", stats.PagesOK)
	}
}

func TestExporter_RunAll(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetOffsetResource("/products", testutil.OffsetResource{Total: 45, PageSize: 20})
	mock.SetLinkResource("/people", testutil.LinkResource{Pages: 2, PerPage: 5})

	dir := t.TempDir()

	productsJob := testJob(t, mock.URL()+"/products", filepath.Join(dir, "products.csv"))

	proj, err := transform.FromKeys([]string{"id", "title"})
	if err != nil {
		t.Fatalf("FromKeys failed: %v", err)
	}
	linkCfg := paginate.DefaultConfig()
	linkCfg.Strategy = paginate.LinkFollowing
	linkCfg.ItemsKey = "results"
	peopleJob := Job{
		Name:       "people",
		BaseURL:    mock.URL() + "/people",
		Paginate:   linkCfg,
		Projection: proj,
		OutPath:    filepath.Join(dir, "people.csv"),
	}

	allStats, err := newExporter(t).RunAll(context.Background(), []Job{productsJob, peopleJob})
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if allStats["products"].Rows != 45 {
		t.Errorf("products rows = %d, want 45", allStats["products"].Rows)
	}
	if allStats["people"].Rows != 10 {
		t.Errorf("people rows = %d, want 10", allStats["people"].Rows)
	}
}
