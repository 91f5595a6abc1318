// Command importer bulk-loads accounts from a CSV file.
// It connects straight to the database, bypassing the HTTP API, and is
// intended for one-off migrations of operator spreadsheets.
//
// Flags:
//
//	--file   path to the CSV file (required)
//	--owner  UUID of the user who will own the imported accounts (required)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"

	accountrepo "github.com/Freskan23/cuentascontrol/internal/adapter/postgres/account"

	"github.com/Freskan23/cuentascontrol/internal/adapter/postgres"
	"github.com/Freskan23/cuentascontrol/internal/app"
	"github.com/Freskan23/cuentascontrol/internal/config"
	"github.com/Freskan23/cuentascontrol/internal/service/account"
)

func main() {
	fileFlag := flag.String("file", "", "path to the CSV file")
	ownerFlag := flag.String("owner", "", "UUID of the owning user")
	flag.Parse()

	if *fileFlag == "" || *ownerFlag == "" {
		flag.Usage()
		os.Exit(1)
	}

	ownerID, err := uuid.Parse(*ownerFlag)
	if err != nil {
		log.Fatalf("invalid --owner: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	f, err := os.Open(*fileFlag)
	if err != nil {
		logger.Error("open csv file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	svc := account.NewService(logger, accountrepo.New(pool))

	result, err := svc.ImportCSV(ctx, ownerID, f)
	if err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, e := range result.Errors {
		logger.Warn("row skipped", slog.Int("line", e.Line), slog.String("reason", e.Reason))
	}
	logger.Info("import finished",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
	)
}
