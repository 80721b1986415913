package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"moodmelt/models"
	"moodmelt/utils"
)

// Output formats accepted by Encode.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	colorTomato    = lipgloss.Color("#FF6347")
	colorGold      = lipgloss.Color("#FFD700")
	colorLimeGreen = lipgloss.Color("#32CD32")
	colorMuted     = lipgloss.Color("#6B7280")

	styleTitle   = lipgloss.NewStyle().Foreground(colorTomato).Bold(true)
	styleSection = lipgloss.NewStyle().Foreground(colorGold).Bold(true)
	styleValue   = lipgloss.NewStyle().Bold(true)
	styleBar     = lipgloss.NewStyle().Foreground(colorLimeGreen)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSummary = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTomato).
			Padding(0, 1)
)

const (
	barWidth   = 30
	labelWidth = 24
)

type InsightService struct {
	logger       *utils.Logger
	topLocations int
}

// NewInsightService creates an InsightService. topLocations <= 0 uses
// DefaultTopLocations.
func NewInsightService(logger *utils.Logger, topLocations int) *InsightService {
	if topLocations <= 0 {
		topLocations = DefaultTopLocations
	}
	return &InsightService{logger: logger, topLocations: topLocations}
}

// Generate computes every view from an already filtered dataset.
func (s *InsightService) Generate(filtered *models.Dataset, criteria models.FilterCriteria) *models.Dashboard {
	d := &models.Dashboard{
		Criteria:         criteria,
		Empty:            filtered.Empty(),
		TotalMentions:    filtered.Len(),
		TotalEngagements: filtered.TotalEngagements(),
		Sentiments:       SentimentDistribution(filtered),
		Platforms:        PlatformEngagement(filtered),
		MediaTypes:       MediaTypeDistribution(filtered),
		TopLocations:     TopLocations(filtered, s.topLocations),
		Trend:            DailyTrend(filtered),
		Insights:         Insights(filtered),
	}

	if d.Empty {
		s.logger.Warn("[insights] No mentions match the selected filters")
	} else {
		s.logger.Info("[insights] Aggregated %d mentions (%s engagements) across %d days",
			d.TotalMentions, humanize.Comma(d.TotalEngagements), len(d.Trend))
	}
	return d
}

// Encode writes d in the given format. Text output is the styled report.
func (s *InsightService) Encode(w io.Writer, d *models.Dashboard, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		s.Render(w, d)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("insights: encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("insights: encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("insights: unknown format %q (want text, json or yaml)", format)
	}
}

// Render prints the dashboard as a terminal report.
func (s *InsightService) Render(w io.Writer, d *models.Dashboard) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", styleTitle.Render(sep))
	fmt.Fprintf(w, "%s\n", styleTitle.Render("  🍓 MOODMELT MEDIA INTELLIGENCE"))
	fmt.Fprintf(w, "%s\n\n", styleTitle.Render(sep))

	section := func(title string) {
		fmt.Fprintf(w, "%s\n", styleSection.Render("  "+title))
		fmt.Fprintf(w, "  %s\n", thin)
	}

	section("Overview")
	fmt.Fprintf(w, "  Mentions    : %s\n", styleValue.Render(humanize.Comma(int64(d.TotalMentions))))
	fmt.Fprintf(w, "  Engagements : %s\n", styleValue.Render(humanize.Comma(d.TotalEngagements)))
	fmt.Fprintf(w, "  Filters     : %s\n", describeCriteria(d.Criteria))
	fmt.Fprintln(w)

	if d.Empty {
		fmt.Fprintf(w, "  %s\n", styleMuted.Render("No mentions match the selected filters."))
		fmt.Fprintf(w, "\n%s\n\n", styleTitle.Render(sep))
		return
	}

	if d.Summary != "" {
		section("Campaign Strategy Summary")
		fmt.Fprintf(w, "%s\n\n", indent(styleSummary.Width(52).Render(d.Summary)))
	}

	section("Sentiment")
	for _, c := range d.Sentiments {
		fmt.Fprintf(w, "  %s %s\n", label(c.Value), styleValue.Render(humanize.Comma(int64(c.Count))))
	}
	fmt.Fprintln(w)

	section("Engagement by Platform")
	renderTotals(w, d.Platforms)
	fmt.Fprintln(w)

	section("Media Type Mix")
	if !d.MediaTypes.Available {
		fmt.Fprintf(w, "  %s\n", styleMuted.Render("Column 'Media Type' not found in the data"))
	} else {
		for _, c := range d.MediaTypes.Counts {
			fmt.Fprintf(w, "  %s %s\n", label(c.Value), styleValue.Render(humanize.Comma(int64(c.Count))))
		}
	}
	fmt.Fprintln(w)

	section(fmt.Sprintf("Top %d Locations", len(d.TopLocations)))
	renderTotals(w, d.TopLocations)
	fmt.Fprintln(w)

	section("Engagement Trend")
	var peak int64
	for _, p := range d.Trend {
		if p.Engagements > peak {
			peak = p.Engagements
		}
	}
	for _, p := range d.Trend {
		fmt.Fprintf(w, "  %s %s %s\n", p.Date.Format(DateLayout),
			styleBar.Render(bar(p.Engagements, peak)), humanize.Comma(p.Engagements))
	}
	fmt.Fprintf(w, "  Overall trend: %s\n", styleValue.Render(string(d.Insights.Trend)))

	fmt.Fprintf(w, "\n%s\n\n", styleTitle.Render(sep))
}

func renderTotals(w io.Writer, rows []models.EngagementTotal) {
	var peak int64
	for _, r := range rows {
		if r.Engagements > peak {
			peak = r.Engagements
		}
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s %s\n", label(r.Value),
			styleBar.Render(bar(r.Engagements, peak)), humanize.Comma(r.Engagements))
	}
}

// bar scales v against peak to at most barWidth blocks.
func bar(v, peak int64) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(v * barWidth / peak)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func describeCriteria(c models.FilterCriteria) string {
	var parts []string
	add := func(name, v string) {
		if !models.Unconstrained(v) {
			parts = append(parts, name+"="+v)
		}
	}
	add("platform", c.Platform)
	add("sentiment", c.Sentiment)
	add("media type", c.MediaType)
	add("location", c.Location)
	if !c.Start.IsZero() || !c.End.IsZero() {
		from, to := "…", "…"
		if !c.Start.IsZero() {
			from = c.Start.Format(DateLayout)
		}
		if !c.End.IsZero() {
			to = c.End.Format(DateLayout)
		}
		parts = append(parts, from+" → "+to)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// label fits s into the fixed-width name column, measured in terminal cells.
func label(s string) string {
	return runewidth.FillRight(runewidth.Truncate(s, labelWidth-2, "..."), labelWidth)
}
