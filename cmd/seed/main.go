package main

import (
	"os"

	"github.com/oggyb/matchbox/internal/config"
	"github.com/oggyb/matchbox/internal/db"
	"github.com/oggyb/matchbox/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedDemoData(database, log); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
