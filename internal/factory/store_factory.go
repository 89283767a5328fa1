package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/adapters/store"
	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// StoreFactory creates assessment stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates an assessment store based on the configuration
func (f *StoreFactory) CreateStore() (core.AssessmentStore, error) {
	storeType := f.cfg.GetString("store.type")
	cleanupFreq, err := f.cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}

	switch storeType {
	case "memory":
		return store.NewMemoryStore(f.logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("store.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(sqlitePath, f.logger, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("store.mysql_dsn")
		return store.NewMySQLStore(mysqlDSN, f.logger, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}

// GetStoreTTL returns the configured assessment TTL
func (f *StoreFactory) GetStoreTTL() (time.Duration, error) {
	return f.cfg.GetDuration("store.ttl")
}

// IsStoreEnabled returns whether the assessment store is enabled
func (f *StoreFactory) IsStoreEnabled() bool {
	return f.cfg.GetBool("store.enabled")
}
