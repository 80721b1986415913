package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"moodmelt/config"
	"moodmelt/llm"
	"moodmelt/models"
	"moodmelt/services"
	"moodmelt/storage"
	"moodmelt/utils"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
}

// newRootCmd creates the root command for the moodmelt CLI.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "moodmelt",
		Short:        "Media intelligence dashboard for social-media mention exports",
		Long:         "Moodmelt filters a CSV of social-media mentions and reports sentiment, platform engagement, media mix, top locations and engagement trends.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.logger = utils.NewLoggerTo(cmd.ErrOrStderr())
			a.logger.SetDebug(a.cfg.DebugLogging)
		},
	}

	rootCmd.SetVersionTemplate("moodmelt version {{.Version}}\n")

	rootCmd.AddCommand(newReportCmd(a))
	rootCmd.AddCommand(newSummaryCmd(a))
	rootCmd.AddCommand(newOptionsCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))

	return rootCmd
}

// filterFlags holds the selector values given on the command line.
type filterFlags struct {
	platform  string
	sentiment string
	mediaType string
	location  string
	from      string
	to        string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.platform, "platform", models.All, "only mentions from this platform")
	cmd.Flags().StringVar(&f.sentiment, "sentiment", models.All, "only mentions with this sentiment")
	cmd.Flags().StringVar(&f.mediaType, "media-type", models.All, "only mentions of this media type (ignored when the file has no 'Media Type' column)")
	cmd.Flags().StringVar(&f.location, "location", models.All, "only mentions from this location")
	cmd.Flags().StringVar(&f.from, "from", "", "first day to include (default: earliest date in the file)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day to include (default: latest date in the file)")
}

// criteria builds a fresh FilterCriteria; unset dates fall back to the
// dataset's bounds.
func (f *filterFlags) criteria(ds *models.Dataset) (models.FilterCriteria, error) {
	c := services.DefaultCriteria(ds)
	c.Platform = f.platform
	c.Sentiment = f.sentiment
	c.MediaType = f.mediaType
	c.Location = f.location

	if f.from != "" {
		t, err := dateparse.ParseIn(f.from, time.UTC)
		if err != nil {
			return c, fmt.Errorf("invalid --from date %q: %w", f.from, err)
		}
		c.Start = models.TruncateDay(t)
	}
	if f.to != "" {
		t, err := dateparse.ParseIn(f.to, time.UTC)
		if err != nil {
			return c, fmt.Errorf("invalid --to date %q: %w", f.to, err)
		}
		c.End = models.TruncateDay(t)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return c, fmt.Errorf("--to %s is before --from %s", c.End.Format(services.DateLayout), c.Start.Format(services.DateLayout))
	}
	return c, nil
}

func (a *app) load(path string) (*models.Dataset, error) {
	ds, err := services.NewParser(a.logger, a.cfg.Delimiter()).ParseFile(path)
	if err != nil {
		if services.IsMalformedInput(err) {
			return nil, fmt.Errorf("%s is empty or could not be processed, check the file format: %w", path, err)
		}
		return nil, err
	}
	if ds.Empty() {
		return nil, fmt.Errorf("%s has no rows with a valid date", path)
	}
	return ds, nil
}

// loadFiltered parses path and applies the command's filters.
func (a *app) loadFiltered(path string, filters *filterFlags) (*models.Dataset, models.FilterCriteria, error) {
	ds, err := a.load(path)
	if err != nil {
		return nil, models.FilterCriteria{}, err
	}
	criteria, err := filters.criteria(ds)
	if err != nil {
		return nil, criteria, err
	}
	filtered := services.Apply(ds, criteria)
	a.logger.Info("[filter] %d of %d mentions match", filtered.Len(), ds.Len())
	return filtered, criteria, nil
}

func (a *app) apiKey(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.GeminiAPIKey
}

func (a *app) summarizer() *services.Summarizer {
	client := llm.NewGeminiClient(
		llm.WithBaseURL(a.cfg.GeminiBaseURL),
		llm.WithModel(a.cfg.GeminiModel),
	)
	pool := utils.NewWorkerPool(a.cfg.SummaryConcurrency, a.cfg.SummaryRateLimitMs)
	return services.NewSummarizer(client, a.logger, pool)
}

// summaryContext bounds a summary call by SUMMARY_TIMEOUT_SEC when positive.
func (a *app) summaryContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.SummaryTimeoutSec <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(a.cfg.SummaryTimeoutSec)*time.Second)
}

func (a *app) openArchive(ctx context.Context) (storage.ReportArchive, error) {
	switch strings.ToLower(a.cfg.ArchiveDriver) {
	case "postgres":
		retry := &utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: a.logger}
		return storage.NewPostgresArchive(ctx, a.cfg.DSN(), retry)
	case "sqlite":
		return storage.NewSQLiteArchive(ctx, a.cfg.SQLitePath)
	case "":
		return nil, errors.New("report archive is disabled, set ARCHIVE_DRIVER to postgres or sqlite")
	default:
		return nil, fmt.Errorf("unknown ARCHIVE_DRIVER %q (want postgres or sqlite)", a.cfg.ArchiveDriver)
	}
}

func newReportCmd(a *app) *cobra.Command {
	var (
		filters     filterFlags
		format      string
		withSummary bool
		apiKey      string
		archive     bool
	)

	cmd := &cobra.Command{
		Use:   "report <file.csv>",
		Short: "Show the dashboard views for a mentions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filtered, criteria, err := a.loadFiltered(args[0], &filters)
			if err != nil {
				return err
			}

			var (
				summarizer *services.Summarizer
				summaries  <-chan services.SummaryResult
			)
			if withSummary {
				key := a.apiKey(apiKey)
				if key == "" && !filtered.Empty() {
					return errors.New("a Gemini API key is required for --summary (use --api-key or GEMINI_API_KEY)")
				}
				ctx, cancel := a.summaryContext(cmd.Context())
				defer cancel()
				// the views below are computed while the request is in flight
				summarizer = a.summarizer()
				_, summaries = summarizer.Request(ctx, key, filtered)
			}

			insights := services.NewInsightService(a.logger, a.cfg.TopLocationsLimit)
			dashboard := insights.Generate(filtered, criteria)

			if summaries != nil {
				if res, ok := <-summaries; ok && summarizer.Current(res.Ticket) {
					dashboard.Summary = res.Text
				}
			}

			if err := insights.Encode(cmd.OutOrStdout(), dashboard, format); err != nil {
				return err
			}

			if archive {
				return a.archiveReport(cmd.Context(), args[0], dashboard)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&withSummary, "summary", false, "include an AI campaign strategy summary")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (default: GEMINI_API_KEY)")
	cmd.Flags().BoolVar(&archive, "archive", false, "store the report's insights in the report archive")

	return cmd
}

func (a *app) archiveReport(ctx context.Context, source string, d *models.Dashboard) error {
	archive, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	report := &models.ArchivedReport{
		SourceFile:       source,
		Criteria:         d.Criteria,
		Insights:         d.Insights,
		TotalMentions:    d.TotalMentions,
		TotalEngagements: d.TotalEngagements,
		Summary:          d.Summary,
	}
	if err := archive.Save(ctx, report); err != nil {
		return err
	}
	a.logger.Info("[archive] Stored report #%d", report.ID)
	return nil
}

func newSummaryCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		apiKey  string
	)

	cmd := &cobra.Command{
		Use:   "summary <file.csv>",
		Short: "Generate an AI campaign strategy summary for the filtered mentions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filtered, _, err := a.loadFiltered(args[0], &filters)
			if err != nil {
				return err
			}

			key := a.apiKey(apiKey)
			if key == "" && !filtered.Empty() {
				return errors.New("a Gemini API key is required (use --api-key or GEMINI_API_KEY)")
			}

			ctx, cancel := a.summaryContext(cmd.Context())
			defer cancel()

			text := a.summarizer().Summarize(ctx, key, filtered)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (default: GEMINI_API_KEY)")

	return cmd
}

func newOptionsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "options <file.csv>",
		Short: "List the filter values and date range available in a mentions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.load(args[0])
			if err != nil {
				return err
			}
			return writeOptions(cmd.OutOrStdout(), services.Options(ds), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", services.FormatText, "output format: text, json or yaml")
	return cmd
}

func writeOptions(w io.Writer, opts models.FilterOptions, format string) error {
	switch strings.ToLower(format) {
	case "", services.FormatText:
		fmt.Fprintf(w, "Platforms:   %s\n", strings.Join(opts.Platforms, ", "))
		fmt.Fprintf(w, "Sentiments:  %s\n", strings.Join(opts.Sentiments, ", "))
		fmt.Fprintf(w, "Media types: %s\n", strings.Join(opts.MediaTypes, ", "))
		fmt.Fprintf(w, "Locations:   %s\n", strings.Join(opts.Locations, ", "))
		fmt.Fprintf(w, "Dates:       %s to %s\n", opts.MinDate.Format(services.DateLayout), opts.MaxDate.Format(services.DateLayout))
		return nil
	case services.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	case services.FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(opts)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Write the filtered mentions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filtered, _, err := a.loadFiltered(args[0], &filters)
			if err != nil {
				return err
			}

			if output == "" {
				output = a.cfg.ExportPath
			}

			var writer storage.MentionWriter
			if output == "-" {
				writer = storage.NewCSVStreamWriter(cmd.OutOrStdout())
			} else {
				fw, err := storage.NewCSVWriter(output)
				if err != nil {
					return err
				}
				writer = fw
			}

			if err := writer.Write(filtered); err != nil {
				_ = writer.Close()
				return err
			}
			if err := writer.Close(); err != nil {
				return err
			}
			if output != "-" {
				a.logger.Info("[export] Wrote %d mentions to %s", filtered.Len(), output)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, '-' for stdout (default: EXPORT_PATH)")

	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently archived reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer archive.Close()

			reports, err := archive.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), reports, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of reports to show")
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatText, "output format: text, json or yaml")
	return cmd
}

func writeHistory(w io.Writer, reports []models.ArchivedReport, format string) error {
	switch strings.ToLower(format) {
	case "", services.FormatText:
		if len(reports) == 0 {
			fmt.Fprintln(w, "No archived reports.")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintf(w, "#%-4d %s  %-24s %6s mentions  top: %s (%s)  trend: %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.SourceFile,
				humanize.Comma(int64(r.TotalMentions)), r.Insights.TopPlatform,
				humanize.Comma(r.Insights.TopPlatformEngagements), r.Insights.Trend)
		}
		return nil
	case services.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case services.FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(reports)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
