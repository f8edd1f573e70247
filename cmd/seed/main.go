// Command main runs the database seeder for Wavelength.
package main

import (
	"flag"
	"log"

	"wavelength/internal/config"
	"wavelength/internal/database"
	"wavelength/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store the seed password unhashed (fast, dev only)")
	preset := flag.String("preset", "", "Apply a specific seeder preset (e.g., MegaPopulated, Cozy)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring other flags)", *preset)
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeederWithOptions(db, seed.SeedOptions{SkipBcrypt: *skipBcrypt})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *preset != "" {
		if err := s.ApplyPreset(*preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
	} else {
		users, err := s.SeedSocialMesh(*numUsers)
		if err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if _, err := s.SeedEngagement(users, *numPosts); err != nil {
			log.Fatalf("Engagement seeding failed: %v", err)
		}
		if _, err := s.SeedConversations(users); err != nil {
			log.Fatalf("Conversation seeding failed: %v", err)
		}
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All seeded users share the same development password.")
}
