// Package store supplies ApplicationRecord snapshots to the calendar from a
// local sqlite file, a postgres database or the hosted REST backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobcal/internal/config"
	"jobcal/internal/model"
)

// ErrNotFound is returned when an application id does not exist.
var ErrNotFound = errors.New("application not found")

// ErrReadOnly is returned by backends that cannot be written to.
var ErrReadOnly = errors.New("store is read-only")

// Source yields the current application records, in a stable order
// (oldest first) so company colors stay put across refreshes.
type Source interface {
	Applications(ctx context.Context) ([]model.ApplicationRecord, error)
}

// Writer adds records and timeline entries.
type Writer interface {
	AddApplication(ctx context.Context, rec model.ApplicationRecord) (string, error)
	AddTimelineEntry(ctx context.Context, applicationID string, entry model.TimelineEntry) error
}

// Store is a Source that can also be written to and closed.
type Store interface {
	Source
	Writer
	Close() error
}

// Open builds the backend selected by cfg.Driver.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return OpenSQLite(cfg.Path)
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("store: postgres driver needs a dsn")
		}
		return OpenPostgres(cfg.DSN)
	case config.DriverRemote:
		if cfg.URL == "" {
			return nil, errors.New("store: remote driver needs a url")
		}
		return NewRemote(cfg.URL, cfg.APIKey, cfg.CacheDir), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func validateRecord(rec model.ApplicationRecord) error {
	if strings.TrimSpace(rec.Company) == "" {
		return errors.New("company must be non-empty")
	}
	if strings.TrimSpace(rec.Position) == "" {
		return errors.New("position must be non-empty")
	}
	return nil
}

func validateEntry(entry model.TimelineEntry) error {
	if strings.TrimSpace(entry.Title) == "" {
		return errors.New("timeline title must be non-empty")
	}
	if strings.TrimSpace(entry.Date) == "" {
		return errors.New("timeline date must be non-empty")
	}
	return nil
}
