// Package upload sends saved-workout export files to a FitRec server.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/meltforce/fitrec/internal/ingest"
	"golang.org/x/sync/errgroup"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	WorkoutsSent      int
	WorkoutsInserted  int
	WorkoutsDuplicate int
	WorkoutsMalformed int
	WorkoutsConflict  int
}

// Sender delivers one export body to the server.
type Sender interface {
	SendWorkouts(ctx context.Context, data []byte) (*ingest.Result, error)
}

// State remembers which export files have already been sent.
type State interface {
	IsSent(ctx context.Context, path string, size int64, hash string) (bool, error)
	MarkSent(ctx context.Context, path string, size int64, hash string, workouts int) error
}

// Uploader walks a directory of *.json exports and sends each changed file.
type Uploader struct {
	client  Sender
	state   State
	root    string
	dryRun  bool
	workers int
	log     *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a new Uploader. root may be a directory or a single file.
// client may be nil in dry-run mode.
func New(client Sender, state State, root string, dryRun bool, workers int, log *slog.Logger) *Uploader {
	return &Uploader{
		client:  client,
		state:   state,
		root:    root,
		dryRun:  dryRun,
		workers: max(workers, 1),
		log:     log,
	}
}

// Run sends every changed export. Files that cannot be read or decoded are
// counted and skipped; a failed send aborts the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, base, err := u.collect()
	if err != nil {
		return &u.stats, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, f := range files {
		g.Go(func() error {
			return u.processFile(ctx, base, f)
		})
	}
	err = g.Wait()
	return &u.stats, err
}

// collect lists the export files under root, in lexical order, and the
// directory their state keys are relative to.
func (u *Uploader) collect() ([]string, string, error) {
	info, err := os.Stat(u.root)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", u.root, err)
	}
	if !info.IsDir() {
		return []string{u.root}, filepath.Dir(u.root), nil
	}

	var files []string
	err = filepath.WalkDir(u.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("walking %s: %w", u.root, err)
	}
	return files, u.root, nil
}

func (u *Uploader) processFile(ctx context.Context, base, path string) error {
	u.update(func(s *Stats) { s.FilesTotal++ })

	relPath, _ := filepath.Rel(base, path)
	info, err := os.Stat(path)
	if err != nil {
		u.fail(path, "stat failed", err)
		return nil
	}
	hash, err := HashFile(path)
	if err != nil {
		u.fail(path, "hash failed", err)
		return nil
	}

	sent, err := u.state.IsSent(ctx, relPath, info.Size(), hash)
	if err != nil {
		u.fail(path, "state check failed", err)
		return nil
	}
	if sent {
		u.update(func(s *Stats) { s.FilesSkipped++ })
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.fail(path, "read failed", err)
		return nil
	}
	workouts, malformed, err := ingest.Decode(bytes.NewReader(data))
	if err != nil {
		u.fail(path, "parse failed", err)
		return nil
	}

	if len(workouts) == 0 {
		u.update(func(s *Stats) { s.FilesSkipped++ })
		if !u.dryRun {
			if err := u.state.MarkSent(ctx, relPath, info.Size(), hash, 0); err != nil {
				u.log.Warn("failed to mark sent", "file", relPath, "error", err)
			}
		}
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would send", "file", relPath, "workouts", len(workouts), "malformed", malformed)
		u.update(func(s *Stats) {
			s.WorkoutsSent += len(workouts)
			s.WorkoutsMalformed += malformed
		})
		return nil
	}

	result, err := u.client.SendWorkouts(ctx, data)
	if err != nil {
		u.update(func(s *Stats) { s.FilesErrored++ })
		return fmt.Errorf("sending %s: %w", relPath, err)
	}

	if err := u.state.MarkSent(ctx, relPath, info.Size(), hash, result.Inserted); err != nil {
		u.log.Warn("failed to mark sent", "file", relPath, "error", err)
	}
	u.update(func(s *Stats) {
		s.FilesUploaded++
		s.WorkoutsSent += result.Received
		s.WorkoutsInserted += result.Inserted
		s.WorkoutsDuplicate += result.Duplicates
		s.WorkoutsMalformed += result.Skipped
		s.WorkoutsConflict += result.Conflicts
	})
	u.log.Info("uploaded export",
		"file", relPath,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
		"conflicts", result.Conflicts,
	)
	return nil
}

func (u *Uploader) fail(path, msg string, err error) {
	u.log.Warn(msg, "file", path, "error", err)
	u.update(func(s *Stats) { s.FilesErrored++ })
}

func (u *Uploader) update(fn func(*Stats)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(&u.stats)
}
