package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ternarybob/sentio/internal/common"
)

// SQLiteDB manages the article and score tables
type SQLiteDB struct {
	db     *gorm.DB
	logger arbor.ILogger
	config *common.SQLiteConfig
}

// NewSQLiteDB opens the database and migrates the schema
func NewSQLiteDB(logger arbor.ILogger, config *common.SQLiteConfig) (*SQLiteDB, error) {
	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across queries
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&ArticleRecord{}, &SentimentScoreRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Str("path", config.Path).Msg("SQLite database initialized")
	return &SQLiteDB{db: db, logger: logger, config: config}, nil
}

// DB returns the gorm handle
func (s *SQLiteDB) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
