// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"alphaboard/internal/bootstrap"
	"alphaboard/internal/config"
	"alphaboard/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numIdeas := flag.Int("ideas", 200, "Number of trade ideas to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext demo passwords (dev fast mode)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d ideas, clean=%v", *numUsers, *numIdeas, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumIdeas:    *numIdeas,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	}
	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is populated with demo data.")
	log.Println("All demo users have the password: password123")
}
