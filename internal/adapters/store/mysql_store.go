package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// MySQLStore is a MySQL implementation of the AssessmentStore interface
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMySQLStore creates a new MySQL assessment store
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS assessments (
			content_hash VARCHAR(64) PRIMARY KEY,
			risk_score DOUBLE,
			risk_level VARCHAR(16),
			degraded BOOLEAN,
			last_seen DATETIME,
			expires_at DATETIME,
			INDEX idx_assessments_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s := &MySQLStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go s.startCleanupTask()

	return s, nil
}

// Get retrieves a stored assessment by content hash
func (s *MySQLStore) Get(ctx context.Context, contentHash string) (*core.StoredAssessment, error) {
	var (
		riskScore           float64
		riskLevel           string
		degraded            bool
		lastSeen, expiresAt time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT risk_score, risk_level, degraded, last_seen, expires_at
		FROM assessments
		WHERE content_hash = ? AND expires_at > NOW()
	`, contentHash).Scan(&riskScore, &riskLevel, &degraded, &lastSeen, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query assessment store: %w", err)
	}

	return &core.StoredAssessment{
		ContentHash: contentHash,
		RiskScore:   riskScore,
		RiskLevel:   core.RiskLevel(riskLevel),
		Degraded:    degraded,
		LastSeen:    lastSeen,
		ExpiresAt:   expiresAt,
	}, nil
}

// Set stores an assessment
func (s *MySQLStore) Set(ctx context.Context, entry *core.StoredAssessment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (content_hash, risk_score, risk_level, degraded, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			risk_score = VALUES(risk_score),
			risk_level = VALUES(risk_level),
			degraded = VALUES(degraded),
			last_seen = VALUES(last_seen),
			expires_at = VALUES(expires_at)
	`, entry.ContentHash, entry.RiskScore, string(entry.RiskLevel), entry.Degraded,
		entry.LastSeen, entry.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to upsert assessment: %w", err)
	}
	return nil
}

// Delete removes a stored assessment
func (s *MySQLStore) Delete(ctx context.Context, contentHash string) error {
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
func (s *MySQLStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM assessments
		WHERE expires_at <= NOW()
	`)

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
func (s *MySQLStore) startCleanupTask() {
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
func (s *MySQLStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close MySQL connection", zap.Error(err))
		}
	})
}
