// Package testutil provides testing utilities for the export pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock paginated JSON API for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple canned response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// OffsetResource configures an offset-paginated mock resource.
type OffsetResource struct {
	// Total is the total item count the resource reports
	Total int

	// PageSize caps the items per response (server-side limit)
	PageSize int

	// TotalKey, ItemsKey name the response keys (default "total", "items")
	TotalKey string
	ItemsKey string

	// OffsetParam names the offset query parameter (default "skip")
	OffsetParam string

	// FailOffsets lists offsets that always answer 500
	FailOffsets map[int]bool

	// Delay per response, applied uniformly
	Delay time.Duration

	// DelayFor overrides Delay per offset (for completion-order tests)
	DelayFor map[int]time.Duration
}

// SetOffsetResource installs an offset-paginated resource at path.
// Items carry sequential ids starting at 1 plus a title field.
func (m *MockAPI) SetOffsetResource(path string, res OffsetResource) {
	if res.TotalKey == "" {
		res.TotalKey = "total"
	}
	if res.ItemsKey == "" {
		res.ItemsKey = "items"
	}
	if res.OffsetParam == "" {
		res.OffsetParam = "skip"
	}
	if res.PageSize <= 0 {
		res.PageSize = 20
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get(res.OffsetParam))

		if delay, ok := res.DelayFor[offset]; ok {
			time.Sleep(delay)
		} else if res.Delay > 0 {
			time.Sleep(res.Delay)
		}

		if res.FailOffsets[offset] {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "internal server error"}`))
			return
		}

		count := res.PageSize
		if offset >= res.Total {
			count = 0
		} else if offset+count > res.Total {
			count = res.Total - offset
		}

		body := map[string]any{
			res.TotalKey: res.Total,
			res.ItemsKey: Items(offset+1, count),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	})
}

// LinkResource configures a link-following mock resource.
type LinkResource struct {
	// Pages is the chain length
	Pages int

	// PerPage is the item count per page
	PerPage int

	// ItemsKey, NextKey name the response keys (default "results", "next")
	ItemsKey string
	NextKey  string
}

// SetLinkResource installs a next-link paginated resource at path.
func (m *MockAPI) SetLinkResource(path string, res LinkResource) {
	if res.ItemsKey == "" {
		res.ItemsKey = "results"
	}
	if res.NextKey == "" {
		res.NextKey = "next"
	}
	if res.PerPage <= 0 {
		res.PerPage = 10
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		body := map[string]any{
			res.ItemsKey: Items((page-1)*res.PerPage+1, res.PerPage),
		}
		if page < res.Pages {
			body[res.NextKey] = fmt.Sprintf("%s%s?page=%d", m.URL(), path, page+1)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	})
}

// Items generates count sequential test items starting at id start.
func Items(start, count int) []map[string]any {
	items := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		id := start + i
		items = append(items, map[string]any{
			"id":    id,
			"title": fmt.Sprintf("item-%d", id),
			"price": float64(id) + 0.5,
		})
	}
	return items
}
