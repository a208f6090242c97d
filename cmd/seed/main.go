package main

import (
	"flag"
	"log"

	"github.com/oggyb/homies/internal/config"
	"github.com/oggyb/homies/internal/db"
)

func main() {
	minimal := flag.Bool("minimal", false, "seed the small deterministic dataset instead of demo data")
	flag.Parse()

	// Load configuration
	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	seed := db.SeedTestData
	if *minimal {
		seed = db.SeedMinimalTestData
	}
	if err := seed(database); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding completed.")
}
