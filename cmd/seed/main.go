// Command seed populates the database with demo theses, users and activity.
package main

import (
	"context"
	"flag"
	"log"

	"thesisrepo/internal/config"
	"thesisrepo/internal/database"
	"thesisrepo/internal/middleware"
	"thesisrepo/internal/observability"
	"thesisrepo/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	preset := flag.String("preset", "demo", "Embedded preset name or path to a YAML preset")
	theses := flag.Int("theses", -1, "Override the preset's thesis count")
	clean := flag.Bool("clean", false, "Delete all rows before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	_ = godotenv.Load()
	observability.UseLogger(middleware.Logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	p, err := seed.LoadPreset(*preset)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}
	if *theses >= 0 {
		p.Theses = *theses
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{Seed: *randSeed, EmailDomain: cfg.EmailDomain})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	ctx := context.Background()
	if *clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, p)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d theses, %d comments, %d citations and %d views",
		sum.Users, sum.Theses, sum.Comments, sum.Citations, sum.Views)
	log.Printf("All seeded accounts use the password %q", seed.DefaultPassword)
}
