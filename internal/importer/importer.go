// Package importer loads saved-workout export files straight into the
// database, bypassing the HTTP ingest endpoint.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meltforce/fitrec/internal/ingest"
	"github.com/meltforce/fitrec/internal/storage"
)

// Source is recorded in import_logs for imports run by this package.
const Source = "fitrec-import"

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesErrored   int

	WorkoutsReceived   int
	WorkoutsInserted   int
	WorkoutsDuplicated int
	WorkoutsSkipped    int
}

// Store is the persistence the importer needs beyond ingest.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// Importer reads *.json exports from a file or directory and stores them.
type Importer struct {
	db       Store
	provider *ingest.Provider
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer.
func New(db Store, provider *ingest.Provider, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, provider: provider, log: log, dryRun: dryRun}
}

// Import processes every export under path for login (the local user when
// empty). The run is recorded as one import log entry.
func (imp *Importer) Import(ctx context.Context, path, login string) (*Stats, error) {
	files, err := exportFiles(path)
	if err != nil {
		return &imp.stats, err
	}

	if imp.dryRun {
		for _, f := range files {
			imp.inspect(f)
		}
		return &imp.stats, nil
	}

	if login == "" {
		login = "local"
	}
	userID, err := imp.db.GetOrCreateUser(ctx, login, "")
	if err != nil {
		return &imp.stats, fmt.Errorf("resolving user %s: %w", login, err)
	}

	start := time.Now()
	logID, err := imp.db.InsertImportLog(ctx, storage.ImportLog{UserID: userID, Source: Source, Status: "running"})
	if err != nil {
		return &imp.stats, err
	}

	var runErr error
	for _, f := range files {
		if err := imp.importFile(ctx, f, userID); err != nil {
			runErr = err
			break
		}
	}

	final := storage.ImportLog{
		Status:           "success",
		WorkoutsReceived: imp.stats.WorkoutsReceived,
		WorkoutsInserted: imp.stats.WorkoutsInserted,
		WorkoutsSkipped:  imp.stats.WorkoutsSkipped,
	}
	durationMs := int(time.Since(start).Milliseconds())
	final.DurationMs = &durationMs
	if runErr != nil {
		final.Status = "error"
		msg := runErr.Error()
		final.ErrorMessage = &msg
	}
	if err := imp.db.UpdateImportLog(ctx, logID, final); err != nil {
		imp.log.Warn("failed to finish import log", "id", logID, "error", err)
	}

	return &imp.stats, runErr
}

// importFile stores one export. Unreadable or malformed files are counted and
// skipped; a storage failure stops the import.
func (imp *Importer) importFile(ctx context.Context, path string, userID int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	result, err := imp.provider.Ingest(ctx, bytes.NewReader(data), userID)
	if result == nil && err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	imp.add(result)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	imp.stats.FilesProcessed++
	return nil
}

// inspect decodes a file without storing it.
func (imp *Importer) inspect(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return
	}
	workouts, malformed, err := ingest.Decode(bytes.NewReader(data))
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return
	}

	invalid := 0
	for _, w := range workouts {
		if w.Validate() != nil {
			invalid++
		}
	}
	imp.stats.FilesProcessed++
	imp.stats.WorkoutsReceived += len(workouts) + malformed
	imp.stats.WorkoutsSkipped += malformed + invalid
	imp.log.Info("dry-run: would import", "file", path, "workouts", len(workouts)-invalid, "skipped", malformed+invalid)
}

func (imp *Importer) add(r *ingest.Result) {
	imp.stats.WorkoutsReceived += r.Received
	imp.stats.WorkoutsInserted += r.Inserted
	imp.stats.WorkoutsDuplicated += r.Duplicates
	imp.stats.WorkoutsSkipped += r.Skipped + r.Conflicts
}

// exportFiles returns path itself when it is a file, otherwise every *.json
// file below it in lexical order.
func exportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".json") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	return files, nil
}
