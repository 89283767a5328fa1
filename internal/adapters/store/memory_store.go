package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

var (
	// ErrNotFound is returned when a stored assessment is not found
	ErrNotFound = errors.New("assessment not found")
)

// MemoryStore is an in-memory implementation of the AssessmentStore interface
type MemoryStore struct {
	entries     map[string]*core.StoredAssessment
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore creates a new in-memory assessment store
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]*core.StoredAssessment),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go s.startCleanupTask()

	return s
}

// Get retrieves a stored assessment by content hash
func (s *MemoryStore) Get(_ context.Context, contentHash string) (*core.StoredAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[contentHash]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrNotFound
	}

	return entry, nil
}

// Set stores an assessment
func (s *MemoryStore) Set(_ context.Context, entry *core.StoredAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.ContentHash] = entry
	return nil
}

// Delete removes a stored assessment
func (s *MemoryStore) Delete(_ context.Context, contentHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, contentHash)
	return nil
}

// Cleanup removes expired entries
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expired := 0
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, key)
			expired++
		}
	}

	s.logger.Debug("Cleaned up expired assessments", zap.Int("expired_count", expired))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *MemoryStore) startCleanupTask() {
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

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
