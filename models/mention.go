package models

import "time"

// Column names recognised in an uploaded mentions file, after trimming.
const (
	ColumnDate        = "Date"
	ColumnEngagements = "Engagements"
	ColumnSentiment   = "Sentiment"
	ColumnPlatform    = "Platform"
	ColumnMediaType   = "Media Type"
	ColumnLocation    = "Location"
)

// Mention is one canonicalised row of an uploaded dataset.
// Date and Engagements are always valid; unrecognised columns live in Extra.
type Mention struct {
	Date        time.Time         `json:"date" yaml:"date"`
	Engagements int64             `json:"engagements" yaml:"engagements"`
	Sentiment   string            `json:"sentiment" yaml:"sentiment"`
	Platform    string            `json:"platform" yaml:"platform"`
	MediaType   string            `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Location    string            `json:"location" yaml:"location"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Day returns the calendar date of the mention with the time of day removed.
func (m Mention) Day() time.Time {
	return TruncateDay(m.Date)
}

// TruncateDay drops the time-of-day part of t, keeping its calendar date.
func TruncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Dataset is an ordered, read-only set of mentions.
//
// HasMediaType is a property of the whole dataset: either every mention
// carries a media type column value or none does.
type Dataset struct {
	Columns      []string
	HasMediaType bool
	Records      []Mention
}

// Len returns the number of mentions in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset holds no mentions.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// TotalEngagements sums engagements over every mention.
func (d *Dataset) TotalEngagements() int64 {
	if d == nil {
		return 0
	}
	var total int64
	for _, m := range d.Records {
		total += m.Engagements
	}
	return total
}
