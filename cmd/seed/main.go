// Command seed fills the database with the built-in catalog and demo data.
package main

import (
	"context"
	"flag"
	"log"

	"prompthub/internal/config"
	"prompthub/internal/database"
	"prompthub/internal/middleware"
	"prompthub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "number of users to create")
	numPosts := flag.Int("posts", 50, "number of posts to create")
	clean := flag.Bool("clean", false, "remove existing users and posts first")
	days := flag.Int("days", 90, "spread post dates over this many days")
	randSeed := flag.Int64("seed", 0, "random seed, 0 for a random run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("🌱 Seeding database...")
	sum, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *clean,
		MaxDays:     *days,
		RandSeed:    *randSeed,
	})
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	log.Printf("✅ Created %d users, %d posts and %d interactions", sum.Users, sum.Posts, sum.Interactions)
	log.Printf("All seeded users share the password %q", seed.DefaultPassword)
}
