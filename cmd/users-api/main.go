package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"userapi/internals/config"
	"userapi/internals/lifecycle"
	"userapi/internals/logger"
	"userapi/internals/password"
	"userapi/internals/server"
	"userapi/internals/storage"
	"userapi/internals/telemetry"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.WithField("env", cfg.Env).Info("Config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:       cfg.Telemetry.Enabled,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
		ServiceName:   cfg.Telemetry.ServiceName,
		Version:       version,
		Environment:   cfg.Env,
		SampleRatio:   cfg.Telemetry.SampleRatio,
	}, log)
	if err != nil {
		log.Warnf("failed to start telemetry: %+v", err)
	}

	dbOpts := storage.Options{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}
	open := func(ctx context.Context) (*gorm.DB, error) {
		db, err := storage.Open(dbOpts, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := storage.Migrate(ctx, db); err != nil {
				_ = storage.Close(db)
				return nil, err
			}
		}
		return db, nil
	}
	dbm := lifecycle.NewManager(open, storage.Ping, lifecycle.Policy{
		Interval:    cfg.Retry.Interval,
		Multiplier:  cfg.Retry.Multiplier,
		MaxInterval: cfg.Retry.MaxInterval,
		MaxAttempts: cfg.Retry.MaxAttempts,
	}, log)

	// No traffic is accepted until the database answers.
	db, err := dbm.Start(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	handler := server.NewRouter(server.Options{
		Users:            storage.NewUserRepository(db),
		Hasher:           password.New(cfg.Security.HashPasswords, cfg.Security.BcryptCost),
		Health:           dbm.Check,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
		Log:              log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to gracefully shutdown server: %v", err)
	}
	if err := dbm.Stop(); err != nil {
		log.Errorf("Failed to release database: %v", err)
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Errorf("Error shutting down telemetry: %v", err)
		}
	}
	log.Info("Server stopped")
}
