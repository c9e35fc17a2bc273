package main

import (
	"flag"

	"github.com/Varun5711/modesta/internal/config"
	"github.com/Varun5711/modesta/internal/database"
	"github.com/Varun5711/modesta/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	log := logger.New("migrate")

	cfg := config.LoadWorker()

	log.Info("Running migrations %s", *direction)
	if err := database.Migrate(cfg.Database.PrimaryDSN, *direction); err != nil {
		log.Fatal("Migration failed: %v", err)
	}
	log.Info("Migrations complete")
}
