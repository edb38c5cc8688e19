package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"userapi/internals/config"
	"userapi/internals/logger"
	"userapi/internals/password"
	"userapi/internals/seed"
	"userapi/internals/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	log.Info("Seed completed successfully.")
}

func dbOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	db, err := storage.Open(dbOptions(cfg), log)
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			log.Errorf("close database: %v", err)
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			return err
		}
	}
	hasher := password.New(cfg.Security.HashPasswords, cfg.Security.BcryptCost)
	return seed.Run(ctx, storage.NewUserRepository(db), hasher, log)
}
