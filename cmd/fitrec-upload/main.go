package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/meltforce/fitrec/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "FitRec server URL (e.g. https://fitrec.tail1234.ts.net)")
	exportPath := flag.String("path", "", "saved-workout export file or directory of *.json exports")
	apiKey := flag.String("api-key", os.Getenv("FITREC_API_KEY"), "ingest API key (default $FITREC_API_KEY)")
	login := flag.String("login", "", "owner of the imported workouts (default: the server's local user)")
	workers := flag.Int("workers", 4, "files uploaded concurrently")
	dryRun := flag.Bool("dry-run", false, "parse exports but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitrec-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitrec-upload -server <URL> -path <export> [-api-key KEY] [-login USER] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".fitrec-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var client upload.Sender
	if *dryRun {
		log.Info("DRY RUN mode: exports will be parsed but not sent")
	} else {
		client = upload.NewClient(*serverURL, *apiKey, *login, Version)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := upload.New(client, state, *exportPath, *dryRun, *workers, log).Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		state.Close()
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded or empty)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Workouts sent:    %d\n", stats.WorkoutsSent)
	fmt.Printf("  Inserted:         %d\n", stats.WorkoutsInserted)
	fmt.Printf("  Duplicates:       %d\n", stats.WorkoutsDuplicate)
	fmt.Printf("  Malformed:        %d\n", stats.WorkoutsMalformed)
	fmt.Printf("  ID conflicts:     %d\n", stats.WorkoutsConflict)
	fmt.Println()
}
