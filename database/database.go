package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"reportify/config"
)

// Database represents the database connection
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	waitInterval := 1 * time.Second
	for attempt := 0; ; attempt++ {
		if err := db.Ping(); err == nil {
			break
		} else if attempt >= 5 {
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt+1, err)
		} else {
			log.WithError(err).Warnf("database connection failed, retrying in %v", waitInterval)
			time.Sleep(waitInterval)
			waitInterval *= 2
		}
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewFromDB wraps an existing connection, used by tests.
func NewFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// GetDB returns the underlying connection for direct access
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateReportsTable creates the reports table if it doesn't exist
func (d *Database) CreateReportsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS reports (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		report_id VARCHAR(32) NOT NULL,
		type ENUM('EMERGENCY', 'NON_EMERGENCY') NOT NULL,
		specific_type VARCHAR(255) NOT NULL,
		title VARCHAR(500) NOT NULL,
		description TEXT NOT NULL,
		location TEXT,
		latitude DOUBLE,
		longitude DOUBLE,
		image LONGTEXT,
		status ENUM('PENDING', 'IN_PROGRESS', 'RESOLVED', 'DISMISSED') NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY idx_reports_report_id (report_id),
		INDEX idx_reports_status (status),
		INDEX idx_reports_type (type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	log.Info("reports table created/verified")
	return nil
}
