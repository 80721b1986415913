package services

import (
	"sort"
	"time"

	"moodmelt/models"
)

// Apply returns the mentions of ds matching every active predicate in c, in
// their original order. The media type predicate only applies when the
// dataset has a media type column. Dates compare at day granularity and the
// range is inclusive on both ends.
func Apply(ds *models.Dataset, c models.FilterCriteria) *models.Dataset {
	out := &models.Dataset{Records: make([]models.Mention, 0)}
	if ds == nil {
		return out
	}
	out.Columns = ds.Columns
	out.HasMediaType = ds.HasMediaType

	var start, end time.Time
	if !c.Start.IsZero() {
		start = models.TruncateDay(c.Start)
	}
	if !c.End.IsZero() {
		end = models.TruncateDay(c.End)
	}

	for _, m := range ds.Records {
		if !matches(c.Platform, m.Platform) ||
			!matches(c.Sentiment, m.Sentiment) ||
			!matches(c.Location, m.Location) {
			continue
		}
		if ds.HasMediaType && !matches(c.MediaType, m.MediaType) {
			continue
		}
		day := m.Day()
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		out.Records = append(out.Records, m)
	}
	return out
}

func matches(want, got string) bool {
	return models.Unconstrained(want) || want == got
}

// DefaultCriteria selects everything: every dimension All and the date range
// spanning the whole dataset.
func DefaultCriteria(ds *models.Dataset) models.FilterCriteria {
	c := models.FilterCriteria{
		Platform:  models.All,
		Sentiment: models.All,
		MediaType: models.All,
		Location:  models.All,
	}
	c.Start, c.End = dateBounds(ds)
	return c
}

// Options lists the values a user can pick per dimension, each list headed by
// All and sorted after it. Media types are only offered when the dataset has
// that column.
func Options(ds *models.Dataset) models.FilterOptions {
	opts := models.FilterOptions{
		Platforms:  withAll(distinct(ds, func(m models.Mention) string { return m.Platform })),
		Sentiments: withAll(distinct(ds, func(m models.Mention) string { return m.Sentiment })),
		MediaTypes: []string{models.All},
		Locations:  withAll(distinct(ds, func(m models.Mention) string { return m.Location })),
	}
	if ds != nil && ds.HasMediaType {
		opts.MediaTypes = withAll(distinct(ds, func(m models.Mention) string { return m.MediaType }))
	}
	opts.MinDate, opts.MaxDate = dateBounds(ds)
	return opts
}

func distinct(ds *models.Dataset, key func(models.Mention) string) []string {
	if ds == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var values []string
	for _, m := range ds.Records {
		k := key(m)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, k)
	}
	sort.Strings(values)
	return values
}

func withAll(values []string) []string {
	return append([]string{models.All}, values...)
}

// dateBounds returns the earliest and latest calendar day in ds, or zero
// times when it is empty.
func dateBounds(ds *models.Dataset) (first, last time.Time) {
	if ds.Empty() {
		return
	}
	for i, m := range ds.Records {
		day := m.Day()
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
	}
	return
}
