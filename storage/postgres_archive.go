package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"

	"moodmelt/utils"
)

const postgresSchema = `
		CREATE TABLE IF NOT EXISTS campaign_reports (
			id                       SERIAL PRIMARY KEY,
			source_file              TEXT        NOT NULL DEFAULT '',
			criteria                 TEXT        NOT NULL,
			dominant_sentiment       TEXT        NOT NULL DEFAULT '',
			top_platform             TEXT        NOT NULL DEFAULT '',
			top_platform_engagements BIGINT      NOT NULL DEFAULT 0,
			trend                    VARCHAR(20) NOT NULL DEFAULT 'stable',
			start_date               TEXT        NOT NULL DEFAULT '',
			end_date                 TEXT        NOT NULL DEFAULT '',
			dominant_media_type      TEXT        NOT NULL DEFAULT '',
			top_location             TEXT        NOT NULL DEFAULT '',
			top_location_engagements BIGINT      NOT NULL DEFAULT 0,
			total_mentions           INTEGER     NOT NULL DEFAULT 0,
			total_engagements        BIGINT      NOT NULL DEFAULT 0,
			summary                  TEXT        NOT NULL DEFAULT '',
			created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_campaign_reports_created  ON campaign_reports(created_at);
		CREATE INDEX IF NOT EXISTS idx_campaign_reports_platform ON campaign_reports(top_platform);
	`

var postgresDialect = dialect{
	name:        "postgres",
	schema:      postgresSchema,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	returningID: true,
}

// NewPostgresArchive opens a connection to PostgreSQL, waits for it to answer
// using retry, runs schema migrations, and returns a ready-to-use archive.
func NewPostgresArchive(ctx context.Context, dsn string, retry *utils.RetryConfig) (*SQLArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return newSQLArchive(ctx, db, postgresDialect)
}
