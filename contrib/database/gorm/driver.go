// Package gorm provides GORM persistence for registration drafts and alert history.
//
// Usage:
//
//	import (
//	    "github.com/agroguard/agroguard/contrib/database/gorm"
//	    "gorm.io/driver/sqlite"
//	    gormpkg "gorm.io/gorm"
//	)
//
//	db, _ := gormpkg.Open(sqlite.Open("agroguard.db"), &gormpkg.Config{})
//	driver := gorm.NewDriver(db)
//	_ = driver.Migrate(ctx)
package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/agroguard/agroguard/core/pkg/alerts"
	"github.com/agroguard/agroguard/core/pkg/registration"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver implements registration.DraftStore and alerts.History using GORM
type Driver struct {
	db *gorm.DB
}

// NewDriver creates a new GORM database driver
func NewDriver(db *gorm.DB) *Driver {
	return &Driver{db: db}
}

// OpenSQLite opens (or creates) a SQLite database at path and migrates it.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*Driver, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer, and each ":memory:" connection is its own database.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	d := NewDriver(db)
	if err := d.Migrate(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// DB returns the underlying GORM database instance
func (d *Driver) DB() *gorm.DB {
	return d.db
}

// Migrate creates or updates the tables used by the driver
func (d *Driver) Migrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(&draftRecord{}, &alertRecord{})
}

type draftRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:200"`
	Phone     string `gorm:"size:32"`
	District  string `gorm:"size:100"`
	SubCounty string `gorm:"size:100"`
	Crop      string `gorm:"size:100"`
	Language  string `gorm:"size:32"`
	LastError string
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (draftRecord) TableName() string { return "registration_drafts" }

func (r draftRecord) toDraft() registration.Draft {
	return registration.Draft{
		ID: r.ID,
		Input: registration.Input{
			Name:      r.Name,
			Phone:     r.Phone,
			District:  r.District,
			SubCounty: r.SubCounty,
			Crop:      r.Crop,
			Language:  registration.Language(r.Language),
		},
		LastError: r.LastError,
		UpdatedAt: r.UpdatedAt,
	}
}

// SaveDraft inserts or replaces a draft
func (d *Driver) SaveDraft(ctx context.Context, draft registration.Draft) error {
	rec := draftRecord{
		ID:        draft.ID,
		Name:      draft.Input.Name,
		Phone:     draft.Input.Phone,
		District:  draft.Input.District,
		SubCounty: draft.Input.SubCounty,
		Crop:      draft.Input.Crop,
		Language:  string(draft.Input.Language),
		LastError: draft.LastError,
		UpdatedAt: draft.UpdatedAt,
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return d.db.WithContext(ctx).Save(&rec).Error
}

// LoadDraft finds a draft by id
func (d *Driver) LoadDraft(ctx context.Context, id string) (registration.Draft, error) {
	var rec draftRecord
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return registration.Draft{}, registration.ErrDraftNotFound
	}
	if err != nil {
		return registration.Draft{}, err
	}
	return rec.toDraft(), nil
}

// DeleteDraft removes a draft
func (d *Driver) DeleteDraft(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&draftRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return registration.ErrDraftNotFound
	}
	return nil
}

// ListDrafts returns all drafts, most recently updated first
func (d *Driver) ListDrafts(ctx context.Context) ([]registration.Draft, error) {
	var recs []draftRecord
	if err := d.db.WithContext(ctx).Order("updated_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	drafts := make([]registration.Draft, 0, len(recs))
	for _, r := range recs {
		drafts = append(drafts, r.toDraft())
	}
	return drafts, nil
}

type alertRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Type      string `gorm:"size:32;index"`
	Priority  string `gorm:"size:16"`
	District  string `gorm:"size:100;index"`
	Crop      string `gorm:"size:100"`
	Message   string `gorm:"size:640"`
	SentTo    int
	Status    string    `gorm:"size:16"`
	Timestamp time.Time `gorm:"index"`
}

func (alertRecord) TableName() string { return "alert_history" }

// RecordAlert stores an alert, replacing an earlier record with the same id
func (d *Driver) RecordAlert(ctx context.Context, a alerts.Alert) error {
	rec := alertRecord{
		ID:        a.ID,
		Type:      string(a.Type),
		Priority:  string(a.Priority),
		District:  a.District,
		Crop:      a.Crop,
		Message:   a.Message,
		SentTo:    a.SentTo,
		Status:    string(a.Status),
		Timestamp: a.Timestamp,
	}
	return d.db.WithContext(ctx).Save(&rec).Error
}

// RecentAlerts returns up to limit alerts, newest first. A limit <= 0 returns all.
func (d *Driver) RecentAlerts(ctx context.Context, limit int) ([]alerts.Alert, error) {
	q := d.db.WithContext(ctx).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []alertRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]alerts.Alert, 0, len(recs))
	for _, r := range recs {
		out = append(out, alerts.Alert{
			ID:        r.ID,
			Type:      alerts.Type(r.Type),
			Priority:  alerts.Priority(r.Priority),
			District:  r.District,
			Crop:      r.Crop,
			Message:   r.Message,
			SentTo:    r.SentTo,
			Status:    alerts.Status(r.Status),
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}

// Name returns the health check name
func (d *Driver) Name() string {
	return "database"
}

// Ping checks database connectivity
func (d *Driver) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *Driver) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ registration.DraftStore = (*Driver)(nil)
	_ alerts.History          = (*Driver)(nil)
)
