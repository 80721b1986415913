package models

import "time"

// TrendDirection classifies the overall movement of the daily trend.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// NotAvailable fills insight fields that cannot be derived from the data.
const NotAvailable = "N/A"

// CategoryCount is the number of mentions carrying one category value.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// EngagementTotal is the summed engagement of one category value.
type EngagementTotal struct {
	Value       string `json:"value" yaml:"value"`
	Engagements int64  `json:"engagements" yaml:"engagements"`
}

// MediaTypeView is the media-type mix. Available is false when the dataset
// has no media type column, which is distinct from an empty Counts slice.
type MediaTypeView struct {
	Available bool            `json:"available" yaml:"available"`
	Counts    []CategoryCount `json:"counts" yaml:"counts"`
}

// TrendPoint is the summed engagement of a single calendar day.
type TrendPoint struct {
	Date        time.Time `json:"date" yaml:"date"`
	Engagements int64     `json:"engagements" yaml:"engagements"`
}

// CampaignInsights holds the scalars that feed the summary prompt.
type CampaignInsights struct {
	DominantSentiment      string         `json:"dominant_sentiment" yaml:"dominant_sentiment"`
	TopPlatform            string         `json:"top_platform" yaml:"top_platform"`
	TopPlatformEngagements int64          `json:"top_platform_engagements" yaml:"top_platform_engagements"`
	Trend                  TrendDirection `json:"trend" yaml:"trend"`
	StartDate              string         `json:"start_date" yaml:"start_date"`
	EndDate                string         `json:"end_date" yaml:"end_date"`
	DominantMediaType      string         `json:"dominant_media_type" yaml:"dominant_media_type"`
	TopLocation            string         `json:"top_location" yaml:"top_location"`
	TopLocationEngagements int64          `json:"top_location_engagements" yaml:"top_location_engagements"`
}

// Dashboard bundles every aggregate view computed from one filtered dataset.
type Dashboard struct {
	Criteria         FilterCriteria    `json:"criteria" yaml:"criteria"`
	Empty            bool              `json:"empty" yaml:"empty"`
	TotalMentions    int               `json:"total_mentions" yaml:"total_mentions"`
	TotalEngagements int64             `json:"total_engagements" yaml:"total_engagements"`
	Sentiments       []CategoryCount   `json:"sentiments" yaml:"sentiments"`
	Platforms        []EngagementTotal `json:"platforms" yaml:"platforms"`
	MediaTypes       MediaTypeView     `json:"media_types" yaml:"media_types"`
	TopLocations     []EngagementTotal `json:"top_locations" yaml:"top_locations"`
	Trend            []TrendPoint      `json:"trend" yaml:"trend"`
	Insights         CampaignInsights  `json:"insights" yaml:"insights"`
	Summary          string            `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// ArchivedReport is a generated report stored by a ReportArchive.
// Only derived insights are kept, never the uploaded mentions.
type ArchivedReport struct {
	ID               int64            `json:"id" yaml:"id"`
	SourceFile       string           `json:"source_file" yaml:"source_file"`
	Criteria         FilterCriteria   `json:"criteria" yaml:"criteria"`
	Insights         CampaignInsights `json:"insights" yaml:"insights"`
	TotalMentions    int              `json:"total_mentions" yaml:"total_mentions"`
	TotalEngagements int64            `json:"total_engagements" yaml:"total_engagements"`
	Summary          string           `json:"summary,omitempty" yaml:"summary,omitempty"`
	CreatedAt        time.Time        `json:"created_at" yaml:"created_at"`
}
