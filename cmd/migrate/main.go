package main

import (
	"context"
	"flag"
	"log"
	"time"

	"refermatch/internal/config"
	"refermatch/internal/database/migration"
	dbpostgres "refermatch/internal/database/postgres"
	"refermatch/internal/database/seeder"
	"refermatch/migrations"
)

func main() {
	seedDemo := flag.Bool("seed-demo", false, "load the demo dataset after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := (migration.Runner{FS: migrations.FS}).Run(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")

	if *seedDemo {
		if err := (seeder.Runner{Seeders: seeder.Defaults()}).Run(ctx, db); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Println("demo data seeded")
	}
}
