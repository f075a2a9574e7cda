// Command main runs the database seeder for Meydan.
package main

import (
	"flag"
	"log"

	"meydan/internal/config"
	"meydan/internal/database"
	"meydan/internal/seed"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	maxDays := flag.Int("max-days", 90, "Spread post timestamps over this many days")
	dryRun := flag.Bool("dry-run", false, "Seed an in-memory database instead of Postgres")
	flag.Parse()

	_ = godotenv.Load()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	var (
		db  *gorm.DB
		err error
	)
	if *dryRun {
		db, err = database.ConnectSQLite()
	} else {
		var cfg *config.Config
		cfg, err = config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		db, err = database.Connect(cfg)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Seed(seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		MaxDays:     *maxDays,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is populated with test data.")
}
