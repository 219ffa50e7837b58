package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Config struct {
	// Driver is "postgres" (default) or "sqlite" for local single-node runs.
	Driver   string
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns  int
	SlowThreshold time.Duration
}

func (c Config) postgresDSN() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		sslMode,
	)
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg Config, logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file:lms.db?_busy_timeout=5000"
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err == nil {
			// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
			if sqlDB, sErr := db.DB(); sErr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	default:
		db, err = gorm.Open(postgres.Open(cfg.postgresDSN()), gcfg)
		if err == nil && cfg.MaxOpenConns > 0 {
			if sqlDB, sErr := db.DB(); sErr == nil {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	serviceLog.Info("Database connected", "driver", db.Dialector.Name())
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	return EnsureLifecycleIndexes(s.db)
}

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
