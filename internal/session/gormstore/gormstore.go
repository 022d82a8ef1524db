// Package gormstore persists session entries in a SQL table through GORM.
// SQLite is the default backend; PostgreSQL lets several machines share one
// signed-in profile.
package gormstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Profile   string    `gorm:"column:profile;primaryKey"`
	EntryKey  string    `gorm:"column:entry_key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string {
	return "session_entries"
}

type Persister struct {
	db      *gorm.DB
	profile string
}

func NewPersister(db *gorm.DB, profile string) *Persister {
	if profile == "" {
		profile = "default"
	}
	return &Persister{db: db, profile: profile}
}

func (p *Persister) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	var entries []Entry
	err := p.db.WithContext(ctx).
		Where("profile = ? AND entry_key IN ?", p.profile, keys).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load session entries: %w", err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.EntryKey] = e.Value
	}
	return out, nil
}

// SaveAll upserts every entry inside one transaction.
func (p *Persister) SaveAll(ctx context.Context, entries map[string]string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range entries {
			entry := Entry{Profile: p.profile, EntryKey: k, Value: v}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "profile"}, {Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&entry).Error
			if err != nil {
				return fmt.Errorf("failed to save session entry %q: %w", k, err)
			}
		}
		return nil
	})
}

func (p *Persister) DeleteAll(ctx context.Context, keys ...string) error {
	err := p.db.WithContext(ctx).
		Where("profile = ? AND entry_key IN ?", p.profile, keys).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete session entries: %w", err)
	}
	return nil
}
