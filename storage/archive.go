package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"moodmelt/models"
)

// dialect captures the differences between the archive's SQL backends.
type dialect struct {
	name        string
	schema      string
	placeholder func(n int) string
	// returningID selects INSERT ... RETURNING id over LastInsertId.
	returningID bool
}

// SQLArchive stores generated reports in a SQL database.
type SQLArchive struct {
	db *sql.DB
	d  dialect
}

func newSQLArchive(ctx context.Context, db *sql.DB, d dialect) (*SQLArchive, error) {
	a := &SQLArchive{db: db, d: d}
	if err := a.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.name, err)
	}
	return a, nil
}

func (a *SQLArchive) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(a.d.schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const archiveColumns = `source_file, criteria, dominant_sentiment, top_platform, top_platform_engagements,
	trend, start_date, end_date, dominant_media_type, top_location, top_location_engagements,
	total_mentions, total_engagements, summary, created_at`

const archiveColumnCount = 15

// Save inserts r and fills in its ID and CreatedAt.
func (a *SQLArchive) Save(ctx context.Context, r *models.ArchivedReport) error {
	criteria, err := json.Marshal(r.Criteria)
	if err != nil {
		return fmt.Errorf("%s: encode criteria: %w", a.d.name, err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	marks := make([]string, archiveColumnCount)
	for i := range marks {
		marks[i] = a.d.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO campaign_reports (%s) VALUES (%s)", archiveColumns, strings.Join(marks, ","))

	args := []any{
		r.SourceFile, string(criteria),
		r.Insights.DominantSentiment, r.Insights.TopPlatform, r.Insights.TopPlatformEngagements,
		string(r.Insights.Trend), r.Insights.StartDate, r.Insights.EndDate,
		r.Insights.DominantMediaType, r.Insights.TopLocation, r.Insights.TopLocationEngagements,
		r.TotalMentions, r.TotalEngagements, r.Summary, r.CreatedAt,
	}

	if a.d.returningID {
		if err := a.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&r.ID); err != nil {
			return fmt.Errorf("%s: insert report: %w", a.d.name, err)
		}
		return nil
	}

	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: insert report: %w", a.d.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: last insert id: %w", a.d.name, err)
	}
	r.ID = id
	return nil
}

// Recent returns up to limit reports, newest first.
func (a *SQLArchive) Recent(ctx context.Context, limit int) ([]models.ArchivedReport, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT id, %s FROM campaign_reports ORDER BY id DESC LIMIT %s`,
		archiveColumns, a.d.placeholder(1))

	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch recent: %w", a.d.name, err)
	}
	defer rows.Close()

	var reports []models.ArchivedReport
	for rows.Next() {
		var (
			r        models.ArchivedReport
			criteria string
			trend    string
			created  any
		)
		if err := rows.Scan(
			&r.ID, &r.SourceFile, &criteria,
			&r.Insights.DominantSentiment, &r.Insights.TopPlatform, &r.Insights.TopPlatformEngagements,
			&trend, &r.Insights.StartDate, &r.Insights.EndDate,
			&r.Insights.DominantMediaType, &r.Insights.TopLocation, &r.Insights.TopLocationEngagements,
			&r.TotalMentions, &r.TotalEngagements, &r.Summary, &created,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", a.d.name, err)
		}
		if err := json.Unmarshal([]byte(criteria), &r.Criteria); err != nil {
			return nil, fmt.Errorf("%s: decode criteria of report %d: %w", a.d.name, r.ID, err)
		}
		r.Insights.Trend = models.TrendDirection(trend)
		if r.CreatedAt, err = scanTime(created); err != nil {
			return nil, fmt.Errorf("%s: created_at of report %d: %w", a.d.name, r.ID, err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (a *SQLArchive) Close() error {
	return a.db.Close()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// scanTime accepts the representations drivers use for timestamps.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case []byte:
		return scanTime(string(t))
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
