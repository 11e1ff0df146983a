package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// storedSession is one persisted session row, keyed by variant
type storedSession struct {
	Variant    string    `gorm:"primaryKey;type:varchar(64)"`
	Credential string    `gorm:"type:text;not null"`
	Profile    string    `gorm:"type:text;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (storedSession) TableName() string {
	return "sessions"
}

// SQLiteStore keeps sessions in a local SQLite database, one row per
// variant. Credential and profile live in the same row.
type SQLiteStore struct {
	db      *gorm.DB
	variant string
}

// OpenSQLiteStore opens (creating if needed) the database at path
func OpenSQLiteStore(path, variant string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&storedSession{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	return &SQLiteStore{db: db, variant: variant}, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) Read() (Session, bool, error) {
	var row storedSession
	if err := s.db.Where("variant = ?", s.variant).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	if row.Credential == "" {
		return Session{}, false, fmt.Errorf("%w: missing credential", ErrMalformedSession)
	}

	var profile UserProfile
	if err := json.Unmarshal([]byte(row.Profile), &profile); err != nil {
		return Session{}, false, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	return Session{Credential: row.Credential, Profile: profile}.normalize(), true, nil
}

func (s *SQLiteStore) Write(sess Session) error {
	if err := checkWritable(sess); err != nil {
		return err
	}
	sess = sess.normalize()
	profile, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	row := storedSession{
		Variant:    s.variant,
		Credential: sess.Credential,
		Profile:    string(profile),
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Clear() error {
	if err := s.db.Where("variant = ?", s.variant).Delete(&storedSession{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
