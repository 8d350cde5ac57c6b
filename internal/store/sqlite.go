package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"timeline-cli/internal/model"

	_ "modernc.org/sqlite"
)

const projectsSchema = `
CREATE TABLE IF NOT EXISTS projects (
	slug    TEXT PRIMARY KEY,
	title   TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	tags    TEXT NOT NULL DEFAULT '',
	grp     TEXT NOT NULL DEFAULT '',
	size    TEXT NOT NULL DEFAULT '',
	date    TEXT NOT NULL DEFAULT '',
	phase   INTEGER NOT NULL DEFAULT 0
);`

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// LoadSQLite reads records from a projects table. Tags are stored comma-joined.
func LoadSQLite(ctx context.Context, path string) ([]model.ProjectRecord, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT slug, title, summary, tags, grp, size, date, phase FROM projects ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectRecord
	for rows.Next() {
		var rec model.ProjectRecord
		var tags string
		if err := rows.Scan(&rec.Slug, &rec.Title, &rec.Summary, &tags, &rec.Group, &rec.Size, &rec.Date, &rec.Phase); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if strings.TrimSpace(tags) != "" {
			rec.Tags = model.NormalizeTags(strings.Split(tags, ","))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read projects: %w", err)
	}
	return out, nil
}

// ExportSQLite writes records into a projects table, replacing rows with the
// same slug.
func ExportSQLite(ctx context.Context, path string, recs []model.ProjectRecord) error {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, projectsSchema); err != nil {
		return fmt.Errorf("create projects table: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO projects (slug, title, summary, tags, grp, size, date, phase) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if strings.TrimSpace(rec.Slug) == "" {
			continue
		}
		tags := strings.Join(model.NormalizeTags(rec.Tags), ",")
		if _, err := stmt.ExecContext(ctx, rec.Slug, rec.Title, rec.Summary, tags, rec.Group, rec.Size, rec.Date, rec.Phase); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Slug, err)
		}
	}
	return tx.Commit()
}
