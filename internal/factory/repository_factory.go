package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/weedbox/emailstore"
	"github.com/weedbox/emailstore/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// RepositoryFactory creates email repositories based on configuration
type RepositoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmailRepository creates an email repository based on the configuration
func (f *RepositoryFactory) CreateEmailRepository() (emailstore.EmailRepository, error) {
	storeCfg := f.cfg.GetStore()

	var dialector gorm.Dialector
	switch storeCfg.Driver {
	case "memory":
		f.logger.Warn("Using in-memory email repository, data is lost on exit")
		return emailstore.NewMemoryEmailRepository(), nil
	case "sqlite":
		// Ensure directory exists
		if dir := filepath.Dir(storeCfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
			}
		}
		dialector = sqlite.Open(storeCfg.SQLitePath)
	case "mysql":
		dialector = mysql.Open(storeCfg.MySQLDSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", storeCfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(storeCfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", storeCfg.Driver, err)
	}

	repo, err := emailstore.NewGormEmailRepository(db)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Opened email repository", zap.String("driver", storeCfg.Driver))
	return repo, nil
}

func gormLogLevel(name string) gormlogger.LogLevel {
	switch name {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
