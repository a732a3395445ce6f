package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/fitrec/internal/config"
	"github.com/meltforce/fitrec/internal/importer"
	"github.com/meltforce/fitrec/internal/ingest"
	"github.com/meltforce/fitrec/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "saved-workout export file or directory (required)")
	login := flag.String("login", "", "owner of the imported workouts (default: local user)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitrec-import -config config.yaml -path /path/to/export.json [-login USER] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	imp := importer.New(db, ingest.NewProvider(db, log), log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath, *login)
	printStats(log, stats)
	if err != nil {
		log.Error("import failed", "error", err)
		db.Close()
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_errored", stats.FilesErrored,
		"workouts_received", stats.WorkoutsReceived,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"workouts_skipped", stats.WorkoutsSkipped,
	)
}
