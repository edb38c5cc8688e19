package storage

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"userapi/internals/models"
)

// Options describes how to reach the database.
type Options struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
}

func dialector(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "sqlite", "":
		return sqlite.Open(opts.DSN), nil
	case "mysql":
		return mysql.Open(opts.DSN), nil
	case "postgres":
		return postgres.Open(opts.DSN), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Open connects to the database described by opts and verifies the connection.
func Open(opts Options, log *logrus.Logger) (*gorm.DB, error) {
	d, err := dialector(opts)
	if err != nil {
		return nil, err
	}
	return open(d, opts, log)
}

func open(d gorm.Dialector, opts Options, log *logrus.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if log != nil {
		gcfg.Logger = gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             opts.SlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	} else {
		gcfg.Logger = gormlogger.Discard
	}

	db, err := gorm.Open(d, gcfg)
	if err != nil {
		return nil, classify("open", errors.Wrapf(err, "open %s database", opts.Driver))
	}
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		_ = Close(db)
		return nil, errors.Wrap(err, "register otelgorm plugin")
	}

	sqlDB, err := db.DB()
	if err != nil {
		if c, ok := db.ConnPool.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, errors.Wrap(err, "get sql.DB")
	}
	if opts.Driver == "sqlite" || opts.Driver == "" {
		// sqlite serialises writers; a single connection also keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate creates or updates the user table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
		return classify("migrate", errors.Wrap(err, "migrate user table"))
	}
	return nil
}

// Ping is the liveness check: it counts the rows of the user table.
func Ping(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return classify("ping", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
