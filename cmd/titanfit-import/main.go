package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/titanfit/internal/api"
	"github.com/claude/titanfit/internal/config"
	"github.com/claude/titanfit/internal/importer"
	"github.com/claude/titanfit/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (.yaml or .toml)")
	userID := flag.String("user", "", "TitanFit user id whose history is archived (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *userID == "" {
		fmt.Fprintf(os.Stderr, "Usage: titanfit-import -config config.yaml -user <id> [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout())

	var archive importer.Archive
	if *dryRun {
		log.Info("DRY RUN mode, no data will be written to the database")
	} else {
		if !cfg.Database.Enabled() {
			log.Error("database section is required unless -dry-run is set")
			os.Exit(1)
		}
		dsn := cfg.Database.DSN()

		// Run migrations
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		// Connect database
		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		if prev, err := db.LastSync(ctx, *userID); err != nil {
			log.Warn("reading last sync failed", "error", err)
		} else if prev != nil {
			log.Info("previous sync", "at", prev.LastSync, "sessions_seen", prev.SessionsSeen)
		}
		archive = db
	}

	// Run import
	imp := importer.New(client, archive, log, *dryRun)
	stats, err := imp.Import(ctx, *userID)
	if err != nil {
		log.Error("import failed", "error", err)
		if stats != nil {
			printStats(log, stats)
		}
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"sessions_fetched", stats.SessionsFetched,
		"sessions_skipped", stats.SessionsSkipped,
		"sessions_inserted", stats.SessionsInserted,
		"sets_inserted", stats.SetsInserted,
		"reps_inserted", stats.RepsInserted,
	)
}
