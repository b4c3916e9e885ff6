// Command main runs the database seeder for MDD.
package main

import (
	"flag"
	"log"

	"mdd/internal/bootstrap"
	"mdd/internal/config"
	"mdd/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	numArticles := flag.Int("articles", defaults.Articles, "Number of articles to create")
	maxComments := flag.Int("comments", defaults.MaxCommentsPerArticle, "Maximum comments per article")
	subsPerUser := flag.Int("subscriptions", defaults.SubscriptionsPerUser, "Themes each user subscribes to")
	maxDays := flag.Int("days", defaults.MaxDays, "Spread article dates over this many days")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Hash the shared password at the minimum bcrypt cost")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	themesOnly := flag.Bool("themes-only", false, "Only upsert the built-in themes")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	opts := seed.Options{
		Users:                 *numUsers,
		Articles:              *numArticles,
		MaxCommentsPerArticle: *maxComments,
		SubscriptionsPerUser:  *subsPerUser,
		SkipBcrypt:            *fast,
		DryRun:                *dryRun,
		BatchSize:             defaults.BatchSize,
		MaxDays:               *maxDays,
		RandomSeed:            *randomSeed,
	}
	s := seed.NewSeeder(db, opts)

	if *themesOnly {
		themes, err := s.Themes()
		if err != nil {
			log.Fatalf("❌ Theme seeding failed: %v", err)
		}
		log.Printf("✨ %d built-in themes ensured.", len(themes))
		return
	}

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! themes=%d users=%d subscriptions=%d articles=%d comments=%d",
		sum.Themes, sum.Users, sum.Subscriptions, sum.Articles, sum.Comments)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
