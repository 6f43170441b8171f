package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := migrator.RunMigrations(cfg.DatabaseURL, MigrationsFS, "goose_user_versions"); err != nil {
		slog.Error("user migrations failed", "error", err)
		os.Exit(1)
	}
}
