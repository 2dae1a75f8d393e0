package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"jobcal/internal/model"
)

//go:embed migrations.sql
var migrationsSQL string

// SQLite is the local single-file store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and runs
// migrations. ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path must be non-empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: sqlite has a single writer and :memory: databases are
	// per connection.
	db.SetMaxOpenConns(1)
	return NewSQLite(db)
}

// NewSQLite wraps an open database and applies migrations.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// InitDB runs the embedded migrations.
func InitDB(db *sql.DB) error {
	for _, s := range strings.Split(migrationsSQL, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Applications returns every record with its ordered timeline, oldest first.
func (s *SQLite) Applications(ctx context.Context) ([]model.ApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_name, position, applied_date FROM applications ORDER BY created_seq`)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	records := make([]model.ApplicationRecord, 0)
	index := make(map[string]int)
	for rows.Next() {
		var rec model.ApplicationRecord
		if err := rows.Scan(&rec.ID, &rec.Company, &rec.Position, &rec.AppliedDate); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.QueryContext(ctx,
		`SELECT application_id, title, description, date FROM timeline_entries ORDER BY application_id, ord`)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer erows.Close()

	for erows.Next() {
		var appID string
		var e model.TimelineEntry
		if err := erows.Scan(&appID, &e.Title, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		i, ok := index[appID]
		if !ok {
			continue
		}
		records[i].Timeline = append(records[i].Timeline, e)
	}
	return records, erows.Err()
}

// AddApplication inserts rec and its timeline. An empty rec.ID gets a UUID.
func (s *SQLite) AddApplication(ctx context.Context, rec model.ApplicationRecord) (string, error) {
	if err := validateRecord(rec); err != nil {
		return "", err
	}
	for _, e := range rec.Timeline {
		if err := validateEntry(e); err != nil {
			return "", err
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applications (id, company_name, position, applied_date, created_seq)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(created_seq), 0) + 1 FROM applications))`,
		rec.ID, strings.TrimSpace(rec.Company), strings.TrimSpace(rec.Position), rec.AppliedDate)
	if err != nil {
		return "", fmt.Errorf("insert application: %w", err)
	}
	for i, e := range rec.Timeline {
		if err := insertEntry(ctx, tx, rec.ID, i+1, e); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// AddTimelineEntry appends entry to an existing application's timeline.
func (s *SQLite) AddTimelineEntry(ctx context.Context, applicationID string, entry model.TimelineEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT MAX(ord) FROM timeline_entries WHERE application_id = a.id), 0) + 1
		 FROM applications a WHERE a.id = ?`, applicationID).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, applicationID)
	}
	if err != nil {
		return fmt.Errorf("next timeline position: %w", err)
	}
	if err := insertEntry(ctx, tx, applicationID, next, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, appID string, ord int, e model.TimelineEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO timeline_entries (application_id, ord, title, description, date) VALUES (?, ?, ?, ?, ?)`,
		appID, ord, strings.TrimSpace(e.Title), e.Description, strings.TrimSpace(e.Date))
	if err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}
