package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"moodmelt/models"
)

func TestGenerateDashboard(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)
	ds := sampleDataset()
	d := svc.Generate(ds, DefaultCriteria(ds))

	if d.Empty {
		t.Fatal("dashboard should not be empty")
	}
	if d.TotalMentions != 7 {
		t.Errorf("TotalMentions: got %d, want 7", d.TotalMentions)
	}
	if d.TotalEngagements != 380 {
		t.Errorf("TotalEngagements: got %d, want 380", d.TotalEngagements)
	}
	if len(d.TopLocations) != DefaultTopLocations {
		t.Errorf("TopLocations len: got %d, want %d", len(d.TopLocations), DefaultTopLocations)
	}
	if d.Insights.TopPlatform != "TikTok" {
		t.Errorf("TopPlatform: got %q, want TikTok", d.Insights.TopPlatform)
	}
}

func TestGenerateCustomTopLocations(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 3)
	d := svc.Generate(sampleDataset(), models.FilterCriteria{})
	if len(d.TopLocations) != 3 {
		t.Fatalf("TopLocations len: got %d, want 3", len(d.TopLocations))
	}
	if d.TopLocations[2].Value != "Jakarta" {
		t.Errorf("largest location should come last, got %v", d.TopLocations)
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)
	d := svc.Generate(nil, models.FilterCriteria{})
	if !d.Empty || d.TotalMentions != 0 {
		t.Errorf("expected empty dashboard, got %+v", d)
	}
	if d.MediaTypes.Available {
		t.Error("nil dataset has no media type column")
	}
}

func TestEncodeJSON(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)
	d := svc.Generate(sampleDataset(), models.FilterCriteria{Platform: "Instagram"})

	var buf bytes.Buffer
	if err := svc.Encode(&buf, d, FormatJSON); err != nil {
		t.Fatalf("Encode json: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["total_mentions"] != float64(7) {
		t.Errorf("total_mentions: got %v", decoded["total_mentions"])
	}
}

func TestEncodeYAML(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)
	d := svc.Generate(sampleDataset(), models.FilterCriteria{})

	var buf bytes.Buffer
	if err := svc.Encode(&buf, d, FormatYAML); err != nil {
		t.Fatalf("Encode yaml: %v", err)
	}

	var decoded struct {
		Insights struct {
			TopLocation string `yaml:"top_location"`
		} `yaml:"insights"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Insights.TopLocation != "Jakarta" {
		t.Errorf("top_location: got %q, want Jakarta", decoded.Insights.TopLocation)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)
	if err := svc.Encode(&bytes.Buffer{}, &models.Dashboard{}, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderText(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)
	d := svc.Generate(sampleDataset(), models.FilterCriteria{Platform: models.All})
	d.Summary = "- Post more videos"

	var buf bytes.Buffer
	svc.Render(&buf, d)
	out := buf.String()

	for _, want := range []string{"Sentiment", "Engagement by Platform", "Top 5 Locations", "Jakarta", "2024-01-05", "decreasing", "Post more videos"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderUnavailableMediaTypeAndEmpty(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 0)

	var buf bytes.Buffer
	svc.Render(&buf, svc.Generate(withoutMediaType(sampleDataset()), models.FilterCriteria{}))
	if !strings.Contains(buf.String(), "'Media Type' not found") {
		t.Error("report should say the media type column is missing")
	}

	buf.Reset()
	nowhere := models.FilterCriteria{Location: "Nowhere"}
	svc.Render(&buf, svc.Generate(Apply(sampleDataset(), nowhere), nowhere))
	if !strings.Contains(buf.String(), "No mentions match") {
		t.Error("report should flag an empty selection")
	}
}

func TestLabelKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jakarta", "Jakarta" + strings.Repeat(" ", labelWidth-7)},
		{strings.Repeat("é", 30), strings.Repeat("é", labelWidth-5) + "...  "},
		{strings.Repeat("東", 15), strings.Repeat("東", 9) + "...   "},
	}
	for _, tt := range tests {
		got := label(tt.in)
		if !utf8.ValidString(got) {
			t.Errorf("label(%q) produced invalid UTF-8", tt.in)
		}
		if got != tt.want {
			t.Errorf("label(%q) = %q; want %q", tt.in, got, tt.want)
		}
		if w := runewidth.StringWidth(got); w != labelWidth {
			t.Errorf("label(%q) width = %d; want %d", tt.in, w, labelWidth)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		v, peak int64
		want    int
	}{
		{0, 100, 0},
		{100, 100, barWidth},
		{50, 100, barWidth / 2},
		{1, 1000, 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		got := len([]rune(bar(tt.v, tt.peak)))
		if got != tt.want {
			t.Errorf("bar(%d, %d) width = %d; want %d", tt.v, tt.peak, got, tt.want)
		}
	}
}
