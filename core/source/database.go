package source

import (
	"context"
	"encoding/json"
	"fmt"

	"codex-manager/core/codex"

	"gorm.io/gorm"
)

// Record is the database row shape for user-authored codex content.
// Flags and System are stored as JSON text so the table stays portable
// between MySQL and SQLite.
type Record struct {
	ID          string `gorm:"primaryKey;column:id"`
	Kind        string `gorm:"column:kind;index"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	Image       string `gorm:"column:image"`
	Sort        int    `gorm:"column:sort"`
	Flags       string `gorm:"column:flags"`
	System      string `gorm:"column:system"`
}

// TableName sets the table used by the database source.
func (Record) TableName() string {
	return "codex_records"
}

// DatabaseSource reads user-authored codex records from the database.
type DatabaseSource struct {
	db *gorm.DB
}

// NewDatabaseSource creates a database-backed source.
func NewDatabaseSource(db *gorm.DB) *DatabaseSource {
	return &DatabaseSource{db: db}
}

// ID returns the source identifier.
func (s *DatabaseSource) ID() string {
	return "database"
}

// Category returns the diagnostics group.
func (s *DatabaseSource) Category() string {
	return CategoryDatabase
}

// ReadAll reads the full codex_records table and converts rows to raw
// records. A row with malformed JSON in flags or system keeps its scalar
// fields; the malformed payload is simply dropped for that row.
func (s *DatabaseSource) ReadAll(ctx context.Context) ([]codex.RawRecord, error) {
	var rows []Record
	if err := s.db.WithContext(ctx).Order("sort, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read codex_records: %w", err)
	}

	records := make([]codex.RawRecord, 0, len(rows))
	for _, row := range rows {
		raw := codex.RawRecord{
			ID:          row.ID,
			Name:        row.Name,
			Kind:        row.Kind,
			Description: row.Description,
			Image:       row.Image,
			Sort:        row.Sort,
		}
		if row.Flags != "" {
			_ = json.Unmarshal([]byte(row.Flags), &raw.Flags)
		}
		if row.System != "" {
			_ = json.Unmarshal([]byte(row.System), &raw.System)
		}
		records = append(records, raw)
	}

	return records, nil
}
