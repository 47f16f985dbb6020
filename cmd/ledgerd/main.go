package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/file"
	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/memory"
	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"
	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/savespendshare-backend/internal/config"
	"github.com/simaogato/savespendshare-backend/internal/logging"
	"github.com/simaogato/savespendshare-backend/internal/usecase/dashboard"
	"github.com/simaogato/savespendshare-backend/internal/usecase/history"
	"github.com/simaogato/savespendshare-backend/internal/usecase/ledger"
	"github.com/simaogato/savespendshare-backend/internal/usecase/scheduler"
	"github.com/simaogato/savespendshare-backend/internal/usecase/seeder"
)

func main() {
	importPath := flag.String("import", "", "replace the household with a JSON backup and exit")
	exportPath := flag.String("export", "", "write a JSON backup (a directory gets the dated file name) and exit")
	csvPath := flag.String("export-csv", "", "write the transaction history as CSV and exit")
	flag.Parse()

	// 1. Configuration and logging
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 2. Storage
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Backend).Msg("failed to open storage")
	}
	defer closeKV()
	store := snapshot.NewStore(kv, logger)

	// 3. Ledger
	l, report, err := ledger.Open(ctx, store, ledger.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open ledger")
	}
	if report.DataLoss != nil {
		logger.Error().Err(report.DataLoss).Msg("previous data could not be recovered, a fresh household was started")
	}
	logger.Info().Str("outcome", string(report.Outcome)).Str("backend", cfg.Backend).Msg("ledger opened")

	// Initialize household from LEDGER_SEED_KIDS and run it
	kids, err := seeder.ParseKids(cfg.SeedKids)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid LEDGER_SEED_KIDS")
	}
	seeded, err := seeder.NewHouseholdSeeder(l, kids).Seed(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed household")
	}
	if seeded {
		logger.Info().Int("kids", len(kids)).Msg("household seeded")
	}

	// 4. One-shot maintenance commands
	if *importPath != "" || *exportPath != "" || *csvPath != "" {
		if err := runMaintenance(ctx, l, *importPath, *exportPath, *csvPath); err != nil {
			logger.Fatal().Err(err).Msg("maintenance command failed")
		}
		return
	}

	logSummary(logger, dashboard.NewDashboardService(l))

	// 5. Scheduler until shutdown
	sched := scheduler.NewScheduler(l, cfg.AutoAllowance, logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx, cfg.CheckInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down gracefully")
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("scheduler stopped")
	}
	logger.Info().Msg("ledger stopped")
}

// openKV returns the slot storage for the configured backend and its closer.
func openKV(ctx context.Context, cfg *config.Config) (snapshot.KV, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewKV(), noop, nil
	case config.BackendFile:
		kv, err := file.NewKV(cfg.DataDir, cfg.Household)
		return kv, noop, err
	case config.BackendSQLite:
		kv, err := sqlite.NewKV(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	case config.BackendPostgres:
		db, err := postgres.NewDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		kv, err := postgres.NewSnapshotRepository(ctx, db, cfg.Household)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return kv, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func runMaintenance(ctx context.Context, l *ledger.Ledger, importPath, exportPath, csvPath string) error {
	if importPath != "" {
		f, err := os.Open(importPath)
		if err != nil {
			return fmt.Errorf("failed to open backup: %w", err)
		}
		state, err := history.ImportBackup(f)
		f.Close()
		if err != nil {
			return err
		}
		res, err := l.Restore(ctx, state)
		if err != nil {
			return err
		}
		if res.PersistErr != nil {
			return res.PersistErr
		}
	}

	if exportPath != "" {
		if info, err := os.Stat(exportPath); err == nil && info.IsDir() {
			exportPath = exportPath + string(os.PathSeparator) + history.BackupFileName(time.Now())
		}
		if err := writeFile(exportPath, func(w io.Writer) error {
			return history.ExportBackup(w, l.Snapshot())
		}); err != nil {
			return err
		}
	}

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error {
			return history.ExportCSV(w, l.Snapshot().Transactions, time.Local)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func logSummary(logger zerolog.Logger, svc *dashboard.DashboardService) {
	summary := svc.GetSummary()
	for _, kid := range summary.Kids {
		logger.Info().
			Str("child", kid.Name).
			Int("age", kid.Age).
			Str("total", kid.Total.StringFixed(2)).
			Msg("balance")
	}
	logger.Info().
		Time("next_allowance", summary.NextAllowance).
		Int("missed_weeks", summary.MissedWeeks).
		Bool("undo_available", summary.UndoAvailable).
		Msg("household summary")
}
