package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appLog "jobcal/internal/log"
	"jobcal/internal/model"
)

// applicationRow is the gorm model behind the hosted "applications" table.
type applicationRow struct {
	ID          string    `gorm:"primaryKey;type:text"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
	CompanyName string `gorm:"not null"`
	Position    string `gorm:"not null"`
	AppliedDate string
	// Association: filled with Preload, ordered by Ord.
	Timeline []timelineRow `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

func (applicationRow) TableName() string { return "applications" }

type timelineRow struct {
	ID            uint   `gorm:"primaryKey"`
	ApplicationID string `gorm:"index;not null;type:text"`
	Ord           int    `gorm:"not null"`
	Title         string `gorm:"not null"`
	Description   string `gorm:"type:text"`
	Date          string `gorm:"not null"`
}

func (timelineRow) TableName() string { return "timeline_entries" }

// Postgres is the gorm-backed store for the hosted relational database.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects with dsn and auto-migrates the schema.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(appLog.Writer{Level: appLog.LevelDebug, Msg: "gorm"}, logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgres(db)
}

// NewPostgres wraps an open gorm handle and runs AutoMigrate.
func NewPostgres(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&applicationRow{}, &timelineRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	appLog.Info("postgres store ready")
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Postgres) Applications(ctx context.Context) ([]model.ApplicationRecord, error) {
	var rows []applicationRow
	err := p.db.WithContext(ctx).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("ord") }).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}

	records := make([]model.ApplicationRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records, nil
}

func (p *Postgres) AddApplication(ctx context.Context, rec model.ApplicationRecord) (string, error) {
	if err := validateRecord(rec); err != nil {
		return "", err
	}
	for _, e := range rec.Timeline {
		if err := validateEntry(e); err != nil {
			return "", err
		}
	}
	row := fromRecord(rec)
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert application: %w", err)
	}
	return row.ID, nil
}

func (p *Postgres) AddTimelineEntry(ctx context.Context, applicationID string, entry model.TimelineEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app applicationRow
		if err := tx.Select("id").First(&app, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, applicationID)
			}
			return err
		}
		var maxOrd int
		if err := tx.Model(&timelineRow{}).
			Where("application_id = ?", applicationID).
			Select("COALESCE(MAX(ord), 0)").
			Scan(&maxOrd).Error; err != nil {
			return err
		}
		row := entryRow(applicationID, maxOrd+1, entry)
		return tx.Create(&row).Error
	})
}

func (r applicationRow) toRecord() model.ApplicationRecord {
	rec := model.ApplicationRecord{
		ID:          r.ID,
		Company:     r.CompanyName,
		Position:    r.Position,
		AppliedDate: r.AppliedDate,
	}
	for _, e := range r.Timeline {
		rec.Timeline = append(rec.Timeline, model.TimelineEntry{
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
		})
	}
	return rec
}

func fromRecord(rec model.ApplicationRecord) applicationRow {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := applicationRow{
		ID:          id,
		CompanyName: strings.TrimSpace(rec.Company),
		Position:    strings.TrimSpace(rec.Position),
		AppliedDate: rec.AppliedDate,
	}
	for i, e := range rec.Timeline {
		row.Timeline = append(row.Timeline, entryRow(id, i+1, e))
	}
	return row
}

func entryRow(appID string, ord int, e model.TimelineEntry) timelineRow {
	return timelineRow{
		ApplicationID: appID,
		Ord:           ord,
		Title:         strings.TrimSpace(e.Title),
		Description:   e.Description,
		Date:          strings.TrimSpace(e.Date),
	}
}
