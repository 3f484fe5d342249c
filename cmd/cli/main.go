package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/passvault/internal/cli"
	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	// The remote transport is wired by deployments that have one; the stock
	// build runs against local state only.
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(ctx, cfg, nil, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
