// Package sink provides streaming output sinks for projected items.
//
// A sink accepts rows in arbitrarily small batches as pages complete and
// owns its header state: the header is written exactly once, strictly
// before the first row. Rows already written survive later failures.
package sink

import (
	"errors"
)

var (
	// ErrHeaderAlreadyWritten is returned on a second header write.
	ErrHeaderAlreadyWritten = errors.New("header already written")

	// ErrNoHeader is returned when rows arrive before any header.
	ErrNoHeader = errors.New("no header written")

	// ErrClosed is returned for writes after Close.
	ErrClosed = errors.New("sink is closed")
)

// Sink is a streaming destination for projected rows.
//
// Implementations own their header state; callers may probe it with
// HeaderWritten instead of tracking a flag of their own.
type Sink interface {
	// WriteHeader writes the column header. A second call is an error.
	WriteHeader(columns []string) error

	// WriteRows appends a batch of rows. Values are looked up by the
	// header's column names; missing values become empty cells.
	WriteRows(rows []map[string]any) error

	// HeaderWritten reports whether the header has been written.
	HeaderWritten() bool

	// Flush forces buffered rows to the underlying storage.
	Flush() error

	// Close flushes and releases the sink. Safe to call on every exit path.
	Close() error
}
