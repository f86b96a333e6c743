package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"maker_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Journal is the append-only order activity log, backed by SQLite
// (pure Go driver). It records what the bot did, not what should be
// resting; the ledger stays the only source of truth for live state.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (or creates) the journal database at path. An empty
// path resolves to the user config directory.
func NewJournal(path string) (*Journal, error) {
	if path == "" {
		resolved, err := defaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve journal path: %w", err)
		}
		path = resolved
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&domain.JournalEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Journal{db: db}, nil
}

func defaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "MakerGo", "data", "journal.db"), nil
}

// Record appends one entry.
func (j *Journal) Record(entry *domain.JournalEntry) error {
	return j.db.Create(entry).Error
}

// Recent returns the latest n entries, newest first.
func (j *Journal) Recent(n int) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	err := j.db.Order("id desc").Limit(n).Find(&entries).Error
	return entries, err
}

// BySymbol returns all entries for one symbol since a cutoff time.
func (j *Journal) BySymbol(symbol string, since time.Time) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	err := j.db.Where("symbol = ? AND created_at >= ?", symbol, since).
		Order("id asc").Find(&entries).Error
	return entries, err
}
