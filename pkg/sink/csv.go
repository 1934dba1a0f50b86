package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVSink streams rows into a UTF-8, comma-separated file.
// The file is created (or truncated) when the sink is opened.
type CSVSink struct {
	file    *os.File
	writer  *csv.Writer
	columns []string
	header  bool
	closed  bool
}

// NewCSVSink opens path for writing, truncating any existing file.
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open sink: %w", err)
	}

	return &CSVSink{
		file:   file,
		writer: csv.NewWriter(file),
	}, nil
}

// WriteHeader writes the column header row. It must be called exactly once,
// before any rows.
func (s *CSVSink) WriteHeader(columns []string) error {
	if s.closed {
		return ErrClosed
	}
	if s.header {
		return ErrHeaderAlreadyWritten
	}

	if err := s.writer.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	s.columns = append([]string(nil), columns...)
	s.header = true
	return nil
}

// WriteRows appends a batch of rows in the header's column order.
// Batches may be as small as one page's worth; repeated calls append.
func (s *CSVSink) WriteRows(rows []map[string]any) error {
	if s.closed {
		return ErrClosed
	}
	if !s.header {
		return ErrNoHeader
	}

	record := make([]string, len(s.columns))
	for _, row := range rows {
		for i, col := range s.columns {
			record[i] = formatValue(row[col])
		}
		if err := s.writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	// Flush per batch so rows survive a later crash
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}

	return nil
}

// HeaderWritten reports whether the header has been written.
func (s *CSVSink) HeaderWritten() bool {
	return s.header
}

// Flush forces buffered rows to disk.
func (s *CSVSink) Flush() error {
	if s.closed {
		return ErrClosed
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close more than
// once is safe; writes after Close fail with ErrClosed.
func (s *CSVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()

	if flushErr != nil {
		return fmt.Errorf("flush on close: %w", flushErr)
	}
	return closeErr
}

// formatValue renders one cell. Absent values become empty cells; floats
// that carry integral values print without a decimal point, matching how
// JSON numbers usually want to round-trip into CSV.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
