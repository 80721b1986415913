package services

import (
	"sort"

	"moodmelt/models"
)

// DateLayout formats calendar days in views and prompts.
const DateLayout = "2006-01-02"

// DefaultTopLocations is the size of the top locations view.
const DefaultTopLocations = 5

// Unavailable marks a view or insight backed by a column the dataset lacks.
const Unavailable = "unavailable"

// group accumulates one category value. Groups are kept in first-seen order.
type group struct {
	value string
	count int
	sum   int64
}

func groupBy(ds *models.Dataset, key func(models.Mention) string) []group {
	if ds.Empty() {
		return nil
	}
	index := make(map[string]int)
	var groups []group
	for _, m := range ds.Records {
		k := key(m)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{value: k})
		}
		groups[i].count++
		groups[i].sum += m.Engagements
	}
	return groups
}

func bySentiment(m models.Mention) string { return m.Sentiment }
func byPlatform(m models.Mention) string { return m.Platform }
func byMediaType(m models.Mention) string { return m.MediaType }
func byLocation(m models.Mention) string { return m.Location }

// counts orders groups by count descending; equal counts keep first-seen order.
func counts(groups []group) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.CategoryCount{Value: g.value, Count: g.count})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// totals orders groups by summed engagement descending; ties keep first-seen order.
func totals(groups []group) []models.EngagementTotal {
	out := make([]models.EngagementTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.EngagementTotal{Value: g.value, Engagements: g.sum})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Engagements > out[j].Engagements })
	return out
}

// SentimentDistribution counts mentions per sentiment.
func SentimentDistribution(ds *models.Dataset) []models.CategoryCount {
	return counts(groupBy(ds, bySentiment))
}

// PlatformEngagement sums engagements per platform, highest first.
func PlatformEngagement(ds *models.Dataset) []models.EngagementTotal {
	return totals(groupBy(ds, byPlatform))
}

// MediaTypeDistribution counts mentions per media type. The view is not
// Available when the dataset has no media type column.
func MediaTypeDistribution(ds *models.Dataset) models.MediaTypeView {
	if ds == nil || !ds.HasMediaType {
		return models.MediaTypeView{Available: false, Counts: []models.CategoryCount{}}
	}
	return models.MediaTypeView{Available: true, Counts: counts(groupBy(ds, byMediaType))}
}

// TopLocations picks the n locations with the highest summed engagement and
// returns them smallest first.
func TopLocations(ds *models.Dataset, n int) []models.EngagementTotal {
	ranked := totals(groupBy(ds, byLocation))
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	top := make([]models.EngagementTotal, len(ranked))
	copy(top, ranked)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Engagements < top[j].Engagements })
	return top
}

// DailyTrend sums engagements per calendar day in ascending date order.
// Days without mentions are not filled in.
func DailyTrend(ds *models.Dataset) []models.TrendPoint {
	if ds.Empty() {
		return []models.TrendPoint{}
	}
	sums := make(map[int64]int64)
	days := make(map[int64]models.TrendPoint)
	for _, m := range ds.Records {
		day := m.Day()
		key := day.Unix()
		sums[key] += m.Engagements
		days[key] = models.TrendPoint{Date: day}
	}

	points := make([]models.TrendPoint, 0, len(days))
	for key, p := range days {
		p.Engagements = sums[key]
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// ClassifyTrend compares the last value against the first: more than 10%
// higher is increasing, more than 10% lower is decreasing. Fewer than two
// values is stable.
func ClassifyTrend(values []int64) models.TrendDirection {
	if len(values) < 2 {
		return models.TrendStable
	}
	first := float64(values[0])
	last := float64(values[len(values)-1])
	switch {
	case last > first*1.1:
		return models.TrendIncreasing
	case last < first*0.9:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// dominant returns the most frequent value, preferring the first seen on ties.
func dominant(groups []group) string {
	best := -1
	for i, g := range groups {
		if best < 0 || g.count > groups[best].count {
			best = i
		}
	}
	if best < 0 {
		return models.NotAvailable
	}
	return groups[best].value
}

// Insights reduces ds to the scalars used by the campaign summary.
func Insights(ds *models.Dataset) models.CampaignInsights {
	in := models.CampaignInsights{
		DominantSentiment: models.NotAvailable,
		TopPlatform:       models.NotAvailable,
		Trend:             models.TrendStable,
		StartDate:         models.NotAvailable,
		EndDate:           models.NotAvailable,
		DominantMediaType: models.NotAvailable,
		TopLocation:       models.NotAvailable,
	}
	if ds == nil || !ds.HasMediaType {
		in.DominantMediaType = Unavailable
	}
	if ds.Empty() {
		return in
	}

	in.DominantSentiment = dominant(groupBy(ds, bySentiment))
	if ds.HasMediaType {
		in.DominantMediaType = dominant(groupBy(ds, byMediaType))
	}

	if platforms := PlatformEngagement(ds); len(platforms) > 0 {
		in.TopPlatform = platforms[0].Value
		in.TopPlatformEngagements = platforms[0].Engagements
	}
	if locations := totals(groupBy(ds, byLocation)); len(locations) > 0 {
		in.TopLocation = locations[0].Value
		in.TopLocationEngagements = locations[0].Engagements
	}

	trend := DailyTrend(ds)
	values := make([]int64, len(trend))
	for i, p := range trend {
		values[i] = p.Engagements
	}
	in.Trend = ClassifyTrend(values)
	if len(trend) > 0 {
		in.StartDate = trend[0].Date.Format(DateLayout)
		in.EndDate = trend[len(trend)-1].Date.Format(DateLayout)
	}
	return in
}
