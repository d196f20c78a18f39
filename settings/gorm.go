package settings

import (
	"context"
	"errors"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting is a row of the settings table.
type Setting struct {
	Key       string    `gorm:"column:key;type:varchar(64);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName pins the table name used by the migrations.
func (Setting) TableName() string {
	return "settings"
}

// GormStore implements Store on a SQL database through GORM.
type GormStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormStore creates a database-backed settings store.
func NewGormStore(db *gorm.DB, log logger.Logger) *GormStore {
	return &GormStore{
		db:     db,
		logger: log,
	}
}

// Get retrieves the document stored under key.
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var setting Setting
	err := s.db.WithContext(ctx).
		Where("`key` = ?", key).
		First(&setting).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get setting", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return nil, err
	}

	return []byte(setting.Value), nil
}

// Put inserts or replaces the document stored under key.
func (s *GormStore) Put(ctx context.Context, key string, value []byte) error {
	setting := Setting{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		s.logger.Error(ctx, "failed to save setting", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return err
	}

	s.logger.Debug(ctx, "setting saved", map[string]interface{}{
		"key": key,
	})
	return nil
}
