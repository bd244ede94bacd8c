package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/moodjournal/internal/buildinfo"
	"github.com/dmitrijs2005/moodjournal/internal/client/cli"
	"github.com/dmitrijs2005/moodjournal/internal/client/config"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	logger, err := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger.With("app", "moodjournal"))
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
