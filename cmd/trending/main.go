// Command trending loads trending rankings from YAML and links them to
// catalog models.
//
//	trending load [--file rankings.yml]
//	trending link [--file rankings.yml] [--dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"prompthub/internal/cache"
	"prompthub/internal/config"
	"prompthub/internal/database"
	"prompthub/internal/middleware"
	"prompthub/internal/seed"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: trending <load|link> [--file path] [--dry-run]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	file := fs.String("file", "", "fixture path, empty for the bundled one")
	dryRun := fs.Bool("dry-run", false, "report link changes without saving (link only)")
	_ = fs.Parse(os.Args[2:])

	if cmd != "load" && cmd != "link" {
		usage()
	}

	fixture, err := readFixture(*file)
	if err != nil {
		log.Fatalf("Failed to read fixture: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := cache.NewStore(cache.InitRedis(cfg.RedisURL), cfg.LocalCacheSize)
	ctx := context.Background()

	switch cmd {
	case "load":
		res, err := seed.LoadTrending(ctx, db, store, fixture)
		if err != nil {
			log.Fatalf("Failed to load trending data: %v", err)
		}
		log.Printf("Loaded %d categories and %d rankings", res.Categories, res.Rankings)
	case "link":
		report, err := seed.LinkTrending(ctx, db, store, fixture.Links, *dryRun)
		if err != nil {
			log.Fatalf("Failed to link trending rankings: %v", err)
		}
		printReport(report)
	}
}

func readFixture(path string) (*seed.TrendingFixture, error) {
	if path == "" {
		return seed.DefaultTrendingFixture()
	}
	return seed.ReadTrendingFixture(path)
}

func printReport(r seed.LinkReport) {
	if r.DryRun {
		fmt.Println("Dry run, nothing was saved.")
	}
	for _, o := range r.Linked {
		fmt.Printf("  linked  %-28s -> %s / %s\n", o.Ranking, o.Platform, o.Model)
	}
	for _, o := range r.Skipped {
		fmt.Printf("  skipped %-28s (%s)\n", o.Ranking, o.Reason)
	}
	fmt.Printf("%d linked, %d skipped\n", len(r.Linked), len(r.Skipped))
}
