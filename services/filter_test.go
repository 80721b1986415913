package services

import (
	"reflect"
	"testing"
	"time"

	"moodmelt/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Columns:      []string{"Date", "Engagements", "Sentiment", "Platform", "Media Type", "Location"},
		HasMediaType: true,
		Records: []models.Mention{
			{Date: day(2024, 1, 1), Engagements: 100, Sentiment: "Positive", Platform: "Instagram", MediaType: "Image", Location: "Jakarta"},
			{Date: day(2024, 1, 1).Add(15 * time.Hour), Engagements: 50, Sentiment: "Negative", Platform: "TikTok", MediaType: "Video", Location: "Bandung"},
			{Date: day(2024, 1, 2), Engagements: 30, Sentiment: "Positive", Platform: "Instagram", MediaType: "Video", Location: "Surabaya"},
			{Date: day(2024, 1, 3).Add(23 * time.Hour), Engagements: 70, Sentiment: "Neutral", Platform: "Twitter", MediaType: "Text", Location: "Jakarta"},
			{Date: day(2024, 1, 5), Engagements: 120, Sentiment: "Negative", Platform: "TikTok", MediaType: "Video", Location: "Medan"},
			{Date: day(2024, 1, 5), Engagements: 10, Sentiment: "Positive", Platform: "Facebook", MediaType: "Image", Location: "Bali"},
			{Date: day(2024, 1, 6), Engagements: 0, Sentiment: "Positive", Platform: "Instagram", MediaType: "Image", Location: "Yogyakarta"},
		},
	}
}

func withoutMediaType(ds *models.Dataset) *models.Dataset {
	out := &models.Dataset{Columns: []string{"Date", "Engagements", "Sentiment", "Platform", "Location"}}
	for _, m := range ds.Records {
		m.MediaType = ""
		out.Records = append(out.Records, m)
	}
	return out
}

func TestApplyAllIsNoConstraint(t *testing.T) {
	ds := sampleDataset()
	got := Apply(ds, models.FilterCriteria{Platform: models.All, Sentiment: models.All, MediaType: models.All, Location: models.All})
	if !reflect.DeepEqual(got.Records, ds.Records) {
		t.Errorf("All criteria should keep every mention in order")
	}
	if !got.HasMediaType {
		t.Error("filtered dataset should keep HasMediaType")
	}
}

func TestApplyExactCaseSensitiveMatch(t *testing.T) {
	ds := sampleDataset()

	got := Apply(ds, models.FilterCriteria{Platform: "Instagram"})
	if got.Len() != 3 {
		t.Errorf("Instagram: got %d mentions, want 3", got.Len())
	}

	got = Apply(ds, models.FilterCriteria{Platform: "instagram"})
	if !got.Empty() {
		t.Errorf("lower-case instagram should match nothing, got %d", got.Len())
	}
}

func TestApplyCombinesWithAnd(t *testing.T) {
	ds := sampleDataset()
	got := Apply(ds, models.FilterCriteria{Platform: "TikTok", Sentiment: "Negative", MediaType: "Video", Location: "Medan"})
	if got.Len() != 1 || got.Records[0].Engagements != 120 {
		t.Errorf("expected the single Medan TikTok mention, got %+v", got.Records)
	}
}

func TestApplyDateRangeInclusiveByDay(t *testing.T) {
	ds := sampleDataset()
	// the 15:00 mention on Jan 1 and the 23:00 mention on Jan 3 must be kept
	got := Apply(ds, models.FilterCriteria{Start: day(2024, 1, 1).Add(12 * time.Hour), End: day(2024, 1, 3)})
	if got.Len() != 4 {
		t.Fatalf("got %d mentions, want 4", got.Len())
	}
	if got.Records[3].Location != "Jakarta" || got.Records[3].Sentiment != "Neutral" {
		t.Errorf("last mention should be the Jan 3 Twitter one, got %+v", got.Records[3])
	}
}

func TestApplyOpenDateBounds(t *testing.T) {
	ds := sampleDataset()
	if got := Apply(ds, models.FilterCriteria{Start: day(2024, 1, 5)}); got.Len() != 3 {
		t.Errorf("open end: got %d, want 3", got.Len())
	}
	if got := Apply(ds, models.FilterCriteria{End: day(2024, 1, 1)}); got.Len() != 2 {
		t.Errorf("open start: got %d, want 2", got.Len())
	}
}

func TestApplyEmptyResultIsNotAnError(t *testing.T) {
	got := Apply(sampleDataset(), models.FilterCriteria{Location: "Nowhere"})
	if got == nil || !got.Empty() {
		t.Fatalf("expected empty dataset, got %+v", got)
	}
	if got.Records == nil {
		t.Error("empty result should carry a non-nil slice")
	}
}

func TestApplyIsSubsetPreservingOrder(t *testing.T) {
	ds := sampleDataset()
	got := Apply(ds, models.FilterCriteria{Sentiment: "Positive"})

	j := 0
	for _, m := range got.Records {
		for j < len(ds.Records) && !reflect.DeepEqual(ds.Records[j], m) {
			j++
		}
		if j == len(ds.Records) {
			t.Fatalf("mention %+v not found in order in the source", m)
		}
		j++
	}
}

func TestApplyIdempotent(t *testing.T) {
	ds := sampleDataset()
	criteria := []models.FilterCriteria{
		{Platform: "Instagram"},
		{Sentiment: "Negative", Start: day(2024, 1, 2)},
		{MediaType: "Video", End: day(2024, 1, 3)},
		{Location: "Nowhere"},
	}
	for _, c := range criteria {
		once := Apply(ds, c)
		twice := Apply(once, c)
		if !reflect.DeepEqual(once.Records, twice.Records) {
			t.Errorf("Apply not idempotent for %+v", c)
		}
	}
}

func TestApplyMediaTypeIgnoredWithoutColumn(t *testing.T) {
	ds := withoutMediaType(sampleDataset())
	got := Apply(ds, models.FilterCriteria{MediaType: "Video"})
	if got.Len() != ds.Len() {
		t.Errorf("media type filter should be a no-op, got %d of %d", got.Len(), ds.Len())
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	ds := sampleDataset()
	before := len(ds.Records)
	_ = Apply(ds, models.FilterCriteria{Platform: "TikTok"})
	if len(ds.Records) != before {
		t.Errorf("input changed length: %d -> %d", before, len(ds.Records))
	}
}

func TestOptions(t *testing.T) {
	opts := Options(sampleDataset())

	wantPlatforms := []string{"All", "Facebook", "Instagram", "TikTok", "Twitter"}
	if !reflect.DeepEqual(opts.Platforms, wantPlatforms) {
		t.Errorf("Platforms: got %v, want %v", opts.Platforms, wantPlatforms)
	}
	wantMedia := []string{"All", "Image", "Text", "Video"}
	if !reflect.DeepEqual(opts.MediaTypes, wantMedia) {
		t.Errorf("MediaTypes: got %v, want %v", opts.MediaTypes, wantMedia)
	}
	if !opts.MinDate.Equal(day(2024, 1, 1)) || !opts.MaxDate.Equal(day(2024, 1, 6)) {
		t.Errorf("date bounds: got %v..%v", opts.MinDate, opts.MaxDate)
	}

	noMedia := Options(withoutMediaType(sampleDataset()))
	if !reflect.DeepEqual(noMedia.MediaTypes, []string{"All"}) {
		t.Errorf("MediaTypes without column: got %v, want [All]", noMedia.MediaTypes)
	}
}

func TestOptionsSkipBlankValues(t *testing.T) {
	ds := sampleDataset()
	ds.Records[0].Platform = ""
	ds.Records[1].Location = ""

	opts := Options(ds)
	for _, list := range [][]string{opts.Platforms, opts.Locations} {
		for _, v := range list {
			if v == "" {
				t.Errorf("blank value offered as an option: %q", list)
			}
		}
	}

	// blank rows still count in the views
	var total int64
	for _, p := range PlatformEngagement(ds) {
		total += p.Engagements
	}
	if total != ds.TotalEngagements() {
		t.Errorf("platform totals: got %d, want %d", total, ds.TotalEngagements())
	}
}

func TestDefaultCriteriaKeepsEverything(t *testing.T) {
	ds := sampleDataset()
	c := DefaultCriteria(ds)
	if got := Apply(ds, c); got.Len() != ds.Len() {
		t.Errorf("default criteria kept %d of %d", got.Len(), ds.Len())
	}
}
