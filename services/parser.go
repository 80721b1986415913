package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"moodmelt/models"
	"moodmelt/utils"
)

// MalformedInputError means the input could not be read as a table at all.
// No partial dataset accompanies it.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Err)
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// IsMalformedInput reports whether err is or wraps a MalformedInputError.
func IsMalformedInput(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}

// Parser turns uploaded delimited text into a canonical Dataset.
type Parser struct {
	logger *utils.Logger
	comma  rune
}

// NewParser creates a Parser splitting fields on comma. A zero rune means ','.
func NewParser(logger *utils.Logger, comma rune) *Parser {
	if comma == 0 {
		comma = ','
	}
	return &Parser{logger: logger, comma: comma}
}

// ParseFile opens path and parses it.
func (p *Parser) ParseFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open %q: %w", path, err)
	}
	defer f.Close()
	return p.Parse(f)
}

// ParseText parses an in-memory document.
func (p *Parser) ParseText(raw string) (*models.Dataset, error) {
	return p.Parse(strings.NewReader(raw))
}

// Parse reads a header row and data rows from r.
//
// Rows whose date cannot be parsed are dropped; engagements that cannot be
// parsed become 0. Input that is not tabular (no header, broken quoting,
// rows wider than the header, missing Date or Engagements column) fails
// with a *MalformedInputError.
func (p *Parser) Parse(r io.Reader) (*models.Dataset, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.Comma = p.comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MalformedInputError{Reason: "no header row"}
	}
	if err != nil {
		return nil, &MalformedInputError{Reason: "read header", Err: err}
	}

	cols := newColumnIndex(header)
	for _, required := range []string{models.ColumnDate, models.ColumnEngagements} {
		if !cols.has(required) {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("missing required column %q", required)}
		}
	}
	for _, optional := range []string{models.ColumnSentiment, models.ColumnPlatform, models.ColumnLocation} {
		if !cols.has(optional) {
			p.logger.Warn("[parser] Column %q not found, values will be empty", optional)
		}
	}

	ds := &models.Dataset{
		Columns:      cols.names,
		HasMediaType: cols.has(models.ColumnMediaType),
		Records:      make([]models.Mention, 0),
	}

	rows, badDates := 0, 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Reason: "read row", Err: err}
		}
		rows++

		if len(row) > len(cols.names) {
			line, _ := cr.FieldPos(0)
			return nil, &MalformedInputError{
				Reason: fmt.Sprintf("line %d has %d fields, header has %d", line, len(row), len(cols.names)),
			}
		}

		date, ok := parseDate(cols.value(row, models.ColumnDate))
		if !ok {
			badDates++
			p.logger.Debug("[parser] Dropping row %d with unparseable date %q", rows, cols.value(row, models.ColumnDate))
			continue
		}

		m := models.Mention{
			Date:        date,
			Engagements: parseEngagements(cols.value(row, models.ColumnEngagements)),
			Sentiment:   strings.TrimSpace(cols.value(row, models.ColumnSentiment)),
			Platform:    strings.TrimSpace(cols.value(row, models.ColumnPlatform)),
			Location:    strings.TrimSpace(cols.value(row, models.ColumnLocation)),
			Extra:       cols.extra(row),
		}
		if ds.HasMediaType {
			m.MediaType = strings.TrimSpace(cols.value(row, models.ColumnMediaType))
		}
		ds.Records = append(ds.Records, m)
	}

	p.logger.Info("[parser] Parsed %d rows → %d mentions (dropped %d with invalid dates)",
		rows, len(ds.Records), badDates)
	return ds, nil
}

// columnIndex maps trimmed header names to field positions. The first
// occurrence wins when a name repeats.
type columnIndex struct {
	names []string
	pos   map[string]int
}

func newColumnIndex(header []string) *columnIndex {
	ci := &columnIndex{
		names: make([]string, len(header)),
		pos:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		name := strings.TrimSpace(h)
		ci.names[i] = name
		if _, dup := ci.pos[name]; !dup {
			ci.pos[name] = i
		}
	}
	return ci
}

func (ci *columnIndex) has(name string) bool {
	_, ok := ci.pos[name]
	return ok
}

// value returns the field for name, or "" when the column or field is absent.
func (ci *columnIndex) value(row []string, name string) string {
	i, ok := ci.pos[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

var recognisedColumns = map[string]struct{}{
	models.ColumnDate:        {},
	models.ColumnEngagements: {},
	models.ColumnSentiment:   {},
	models.ColumnPlatform:    {},
	models.ColumnMediaType:   {},
	models.ColumnLocation:    {},
}

// extra collects the columns the dashboard does not interpret.
func (ci *columnIndex) extra(row []string) map[string]string {
	var out map[string]string
	for name, i := range ci.pos {
		if _, known := recognisedColumns[name]; known {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		if i < len(row) {
			out[name] = row[i]
		} else {
			out[name] = ""
		}
	}
	return out
}

// parseDate accepts any layout dateparse recognises. Zone-less values are
// read as UTC.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseEngagements returns a non-negative whole count. Fractions are
// truncated; anything unparseable, negative or non-finite becomes 0.
func parseEngagements(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
