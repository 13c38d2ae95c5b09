package persist

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoreEntry is one persisted blob row.
type StoreEntry struct {
	Key       string    `gorm:"primarykey;type:varchar(64)"`
	Value     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time
}

// GormBackend keeps entries in a single-table sqlite database.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend opens (or creates) the sqlite database at path and migrates
// the entry table.
func NewGormBackend(path string) (*GormBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}
	return NewGormBackendWithDB(db)
}

// NewGormBackendWithDB wraps an already-open connection. Used by tests.
func NewGormBackendWithDB(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&StoreEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage table: %w", err)
	}
	return &GormBackend{db: db}, nil
}

func (g *GormBackend) Load(key string) ([]byte, error) {
	var entry StoreEntry
	if err := g.db.First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEntry
		}
		return nil, err
	}
	return entry.Value, nil
}

func (g *GormBackend) Save(key string, value []byte) error {
	entry := StoreEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return g.db.Save(&entry).Error
}

func (g *GormBackend) Delete(key string) error {
	return g.db.Delete(&StoreEntry{}, "key = ?", key).Error
}
