package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; using environment variables", "tag", "main")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(newCmd().ExecuteContext(ctx))
}
