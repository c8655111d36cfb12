package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/vigil/internal/config"
	"github.com/crucial707/vigil/internal/db"
	"github.com/crucial707/vigil/internal/logger"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/crucial707/vigil/internal/scheduler"
	"github.com/crucial707/vigil/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vigil-api",
		Short:        "Vigil security operations API",
		Long:         "HTTP API for guards, supervisors and administrators: occurrences, rounds, shifts, locations and audit.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), serve)
		},
	}
	var down int
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (or roll back with --down) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			dsn, err := db.DSN(cfg.DatabaseURL, cfg.DBName)
			if err != nil {
				return err
			}
			var version uint
			if down > 0 {
				version, err = db.Rollback(dsn, down)
			} else {
				version, err = db.Migrate(dsn)
			}
			if err != nil {
				log.Error("migrations failed", zap.Error(err))
				return err
			}
			log.Info("schema at version", zap.String("database", db.Name(dsn)), zap.Uint("version", version))
			return nil
		},
	}
	migrateCmd.Flags().IntVar(&down, "down", 0, "Roll back this many migrations instead of applying")
	root.AddCommand(migrateCmd)
	root.AddCommand(&cobra.Command{
		Use:   "reset-admin",
		Short: "Reset the password of ADMIN_EMAIL to ADMIN_PASSWORD and reactivate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt app) error {
				if err := seed.ResetAdmin(ctx, repo.NewUserRepo(rt.db), seedOptions(rt.cfg)); err != nil {
					return err
				}
				rt.log.Info("administrator password reset", zap.String("email", rt.cfg.AdminEmail))
				return nil
			})
		},
	})
	return root
}

// bootstrap loads and validates configuration and builds the logger.
// Configuration errors are fatal.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return cfg, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "vigil-api")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return cfg, nil, err
	}
	return cfg, log, nil
}

type app struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB
}

// withRuntime opens the store, applies migrations and seeds defaults, then
// runs fn until it returns or the process is signalled.
func withRuntime(parent context.Context, fn func(ctx context.Context, rt app) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn, err := db.DSN(cfg.DatabaseURL, cfg.DBName)
	if err != nil {
		log.Error("invalid database url", zap.Error(err))
		return err
	}
	database, err := db.Connect(ctx, dsn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer database.Close()
	log.Info("connected to database", zap.String("database", db.Name(dsn)))

	version, err := db.Migrate(dsn)
	if err != nil {
		log.Error("migrations failed", zap.Error(err))
		return err
	}
	log.Debug("schema up to date", zap.Uint("version", version))

	if err := seed.EnsureDefaults(ctx, repo.NewUserRepo(database), repo.NewLocationRepo(database), seedOptions(cfg), log); err != nil {
		log.Error("seeding failed", zap.Error(err))
		return err
	}

	return fn(ctx, app{cfg: cfg, log: log, db: database})
}

func seedOptions(cfg config.Config) seed.Options {
	return seed.Options{
		AdminName:     cfg.AdminName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SampleData:    cfg.SeedSampleData,
	}
}

// serve runs the HTTP server and the gauge scheduler until ctx is cancelled,
// then drains in-flight requests.
func serve(ctx context.Context, rt app) error {
	handler, err := newRouter(rt.db, rt.cfg, rt.log)
	if err != nil {
		rt.log.Error("build router", zap.Error(err))
		return err
	}

	go func() {
		if err := scheduler.Run(ctx, rt.cfg.MetricsRefreshCron, repo.NewDashboardRepo(rt.db), rt.log); err != nil {
			rt.log.Error("scheduler stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + rt.cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		tls := rt.cfg.TLSCertFile != ""
		rt.log.Info("starting server", zap.String("addr", srv.Addr), zap.Bool("tls", tls), zap.String("env", rt.cfg.Env))
		var err error
		if tls {
			err = srv.ListenAndServeTLS(rt.cfg.TLSCertFile, rt.cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			rt.log.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
