package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// SQLiteStore is a SQLite implementation of the AssessmentStore interface
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewSQLiteStore creates a new SQLite assessment store
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS assessments (
			content_hash TEXT PRIMARY KEY,
			risk_score REAL,
			risk_level TEXT,
			degraded BOOLEAN,
			last_seen TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_assessments_expires_at ON assessments(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	s := &SQLiteStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go s.startCleanupTask()

	return s, nil
}

// Get retrieves a stored assessment by content hash
func (s *SQLiteStore) Get(ctx context.Context, contentHash string) (*core.StoredAssessment, error) {
	var (
		riskScore           float64
		riskLevel           string
		degraded            bool
		lastSeen, expiresAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT risk_score, risk_level, degraded, last_seen, expires_at
		FROM assessments
		WHERE content_hash = ? AND expires_at > ?
	`, contentHash, time.Now().Format(time.RFC3339)).Scan(&riskScore, &riskLevel, &degraded, &lastSeen, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query assessment store: %w", err)
	}

	seen, err := time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_seen timestamp: %w", err)
	}
	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	return &core.StoredAssessment{
		ContentHash: contentHash,
		RiskScore:   riskScore,
		RiskLevel:   core.RiskLevel(riskLevel),
		Degraded:    degraded,
		LastSeen:    seen,
		ExpiresAt:   expires,
	}, nil
}

// Set stores an assessment
func (s *SQLiteStore) Set(ctx context.Context, entry *core.StoredAssessment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assessments (content_hash, risk_score, risk_level, degraded, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ContentHash, entry.RiskScore, string(entry.RiskLevel), entry.Degraded,
		entry.LastSeen.Format(time.RFC3339), entry.ExpiresAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// Delete removes a stored assessment
func (s *SQLiteStore) Delete(ctx context.Context, contentHash string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM assessments
		WHERE content_hash = ?
	`, contentHash)

	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM assessments
		WHERE expires_at <= ?
	`, time.Now().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to clean up expired assessments: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired assessments", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *SQLiteStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up assessment store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (s *SQLiteStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	})
}
