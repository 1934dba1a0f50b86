package paginate

import (
	"fmt"
	"net/url"
	"strconv"
)

// parsePage extracts the item list and pagination signal from a decoded
// JSON response. Bodies that are bare arrays carry items but no signal.
func parsePage(decoded any, cfg Config) ([]map[string]any, Signal) {
	switch body := decoded.(type) {
	case []any:
		return collectItems(body), Signal{}
	case map[string]any:
		var items []map[string]any
		if cfg.ItemsKey != "" {
			if raw, ok := body[cfg.ItemsKey].([]any); ok {
				items = collectItems(raw)
			}
		}

		signal := Signal{}
		if cfg.TotalKey != "" {
			if total, ok := asInt(body[cfg.TotalKey]); ok {
				signal.Total = total
				signal.HasTotal = true
			}
		}
		if cfg.NextKey != "" {
			if next, ok := body[cfg.NextKey].(string); ok && next != "" {
				signal.Next = next
			}
		}
		return items, signal
	default:
		return nil, Signal{}
	}
}

// collectItems keeps the elements that are JSON objects.
func collectItems(raw []any) []map[string]any {
	items := make([]map[string]any, 0, len(raw))
	for _, elem := range raw {
		if item, ok := elem.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}

// asInt converts a decoded JSON number to int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		// Some APIs report totals as strings
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// offsetURL builds the request URL for one page, preserving any query
// parameters already present on the base URL.
func offsetURL(baseURL string, cfg Config, offset int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set(cfg.LimitParam, strconv.Itoa(cfg.PageSize))
	q.Set(cfg.OffsetParam, strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// remainingOffsets lists the offsets still to fetch after page 0.
// For total t and page size p that is {p, 2p, ...} below t,
// ceil(t/p)-1 offsets in all.
func remainingOffsets(total, pageSize int) []int {
	if total <= pageSize {
		return nil
	}
	offsets := make([]int, 0, (total-1)/pageSize)
	for offset := pageSize; offset < total; offset += pageSize {
		offsets = append(offsets, offset)
	}
	return offsets
}
