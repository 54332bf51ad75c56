package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/Ziolli/Case-Indicium/internal/config"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

func main() {
	_ = godotenv.Load()

	path := flag.String("path", "migrations", "path to migration files")
	flag.Parse()

	cfg := config.NewDefaultLoader().MustLoad(context.Background())

	if err := store.RunMigrations(store.MigrationConfig{
		DatabaseURL:    cfg.Database.MigrateDSN(),
		MigrationsPath: *path,
	}); err != nil {
		log.Fatal("Migration failed: ", err)
	}
	log.Println("Migrations applied")
}
