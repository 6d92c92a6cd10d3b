// Command main runs the database seeder for Librarium.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numContent := flag.Int("content", 200, "Number of content items to create")
	projects := flag.String("projects", "default", "Comma-separated projects to seed into")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Run(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumContent:  *numContent,
		Projects:    strings.Split(*projects, ","),
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding completed")
}
