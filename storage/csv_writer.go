package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"moodmelt/models"
)

// CSVWriter writes mentions back out as delimited text, using the column
// order of the uploaded file. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{closer: f, writer: csv.NewWriter(f)}, nil
}

// NewCSVStreamWriter writes to w. Close flushes but leaves w open.
func NewCSVStreamWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// Write emits a header row followed by one row per mention.
func (c *CSVWriter) Write(ds *models.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	columns := ds.Columns
	if len(columns) == 0 {
		columns = defaultColumns(ds.HasMediaType)
	}
	if err := c.writer.Write(columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, m := range ds.Records {
		for i, col := range columns {
			row[i] = fieldValue(m, col)
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
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}

func defaultColumns(withMediaType bool) []string {
	cols := []string{models.ColumnDate, models.ColumnEngagements, models.ColumnSentiment, models.ColumnPlatform}
	if withMediaType {
		cols = append(cols, models.ColumnMediaType)
	}
	return append(cols, models.ColumnLocation)
}

func fieldValue(m models.Mention, column string) string {
	switch column {
	case models.ColumnDate:
		return formatDate(m.Date)
	case models.ColumnEngagements:
		return strconv.FormatInt(m.Engagements, 10)
	case models.ColumnSentiment:
		return m.Sentiment
	case models.ColumnPlatform:
		return m.Platform
	case models.ColumnMediaType:
		return m.MediaType
	case models.ColumnLocation:
		return m.Location
	default:
		return m.Extra[column]
	}
}

// formatDate writes midnight UTC values as a bare date.
func formatDate(t time.Time) string {
	if t.Location() == time.UTC && t.Equal(models.TruncateDay(t)) {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
