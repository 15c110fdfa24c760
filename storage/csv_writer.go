package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"covid-dashboard/models"
)

// CSVWriter exports datasets as CSV. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	writer *csv.Writer
	closer io.Closer
}

// NewCSVWriter wraps w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// CreateCSVFile creates (or truncates) the file at path, making intermediate
// directories as needed.
func CreateCSVFile(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return &CSVWriter{writer: csv.NewWriter(f), closer: f}, nil
}

// Write emits a header row followed by one row per record. Absent fields are
// written as empty cells.
func (c *CSVWriter) Write(dataset models.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	columns := Columns(dataset)
	if err := c.writer.Write(columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, r := range dataset {
		for i, col := range columns {
			row[i] = r[col]
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer != nil {
		return c.closer.Close()
	}
	return c.writer.Error()
}

// Columns lists the known headers present in dataset in their usual order,
// then any other columns alphabetically. An empty dataset yields the known headers.
func Columns(dataset models.Dataset) []string {
	if len(dataset) == 0 {
		return append([]string(nil), models.ExpectedHeaders...)
	}

	present := make(map[string]struct{})
	for _, r := range dataset {
		for k := range r {
			present[k] = struct{}{}
		}
	}

	var columns []string
	for _, h := range models.ExpectedHeaders {
		if _, ok := present[h]; ok {
			columns = append(columns, h)
			delete(present, h)
		}
	}
	extra := make([]string, 0, len(present))
	for k := range present {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(columns, extra...)
}
