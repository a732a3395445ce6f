package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/config"
	fitmcp "github.com/meltforce/fitrec/internal/mcp"
	"github.com/meltforce/fitrec/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode: read the database directly)")
	serverURL := flag.String("server", "", "FitRec server URL (remote mode, e.g. http://fitrec.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitrec-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*configPath == "") == (*serverURL == "") {
		fmt.Fprintf(os.Stderr, "Usage: fitrec-mcp (-config config.yaml | -server <URL>)\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds fitmcp.DataSource
	if *serverURL != "" {
		ds = fitmcp.NewHTTPClient(*serverURL)
		log.Info("mcp remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			log.Warn("exercise catalog unavailable", "path", cfg.Catalog.Path, "error", err)
		}
		ds = fitmcp.NewLocal(db, cat)
		log.Info("mcp local mode", "database", cfg.Database.Host)
	}

	if err := mcpserver.ServeStdio(fitmcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
