package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
		CREATE TABLE IF NOT EXISTS campaign_reports (
			id                       INTEGER PRIMARY KEY AUTOINCREMENT,
			source_file              TEXT     NOT NULL DEFAULT '',
			criteria                 TEXT     NOT NULL,
			dominant_sentiment       TEXT     NOT NULL DEFAULT '',
			top_platform             TEXT     NOT NULL DEFAULT '',
			top_platform_engagements INTEGER  NOT NULL DEFAULT 0,
			trend                    TEXT     NOT NULL DEFAULT 'stable',
			start_date               TEXT     NOT NULL DEFAULT '',
			end_date                 TEXT     NOT NULL DEFAULT '',
			dominant_media_type      TEXT     NOT NULL DEFAULT '',
			top_location             TEXT     NOT NULL DEFAULT '',
			top_location_engagements INTEGER  NOT NULL DEFAULT 0,
			total_mentions           INTEGER  NOT NULL DEFAULT 0,
			total_engagements        INTEGER  NOT NULL DEFAULT 0,
			summary                  TEXT     NOT NULL DEFAULT '',
			created_at               DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_campaign_reports_created ON campaign_reports(created_at);
	`

var sqliteDialect = dialect{
	name:        "sqlite",
	schema:      sqliteSchema,
	placeholder: func(int) string { return "?" },
}

// NewSQLiteArchive opens (or creates) the SQLite database at path and runs
// schema migrations. ":memory:" keeps the archive in memory.
func NewSQLiteArchive(ctx context.Context, path string) (*SQLArchive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)

	return newSQLArchive(ctx, db, sqliteDialect)
}
