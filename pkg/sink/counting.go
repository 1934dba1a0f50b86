package sink

// CountingSink decorates a Sink with a row counter for run statistics.
type CountingSink struct {
	inner Sink
	rows  int
}

// NewCountingSink wraps inner with row counting.
func NewCountingSink(inner Sink) *CountingSink {
	return &CountingSink{inner: inner}
}

// Rows returns the number of rows written so far.
func (s *CountingSink) Rows() int {
	return s.rows
}

func (s *CountingSink) WriteHeader(columns []string) error {
	return s.inner.WriteHeader(columns)
}

func (s *CountingSink) WriteRows(rows []map[string]any) error {
	if err := s.inner.WriteRows(rows); err != nil {
		return err
	}
	s.rows += len(rows)
	return nil
}

func (s *CountingSink) HeaderWritten() bool {
	return s.inner.HeaderWritten()
}

func (s *CountingSink) Flush() error {
	return s.inner.Flush()
}

func (s *CountingSink) Close() error {
	return s.inner.Close()
}
