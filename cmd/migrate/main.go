package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"melhado-backend/internal/database"
)

var tables = []string{
	"users",
	"sessions",
	"properties",
	"rooms",
	"inspections",
	"inspection_items",
	"inspection_history",
	"documents",
	"notifications",
	"fcm_tokens",
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("🔌 Connected to database")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		password := os.Getenv("DEMO_PASSWORD")
		if password == "" {
			log.Fatal("DEMO_PASSWORD must be set to seed demo data")
		}
		if err := database.SeedUsers(db, password); err != nil {
			log.Fatalf("Seeding users failed: %v", err)
		}
		if err := database.SeedDemoData(db); err != nil {
			log.Fatalf("Seeding demo data failed: %v", err)
		}
		log.Println("🌱 Demo data seeded")
	}

	// Table names come from the fixed list above.
	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	for _, table := range tables {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		fmt.Printf("%-22s %d rows\n", table+":", n)
	}
	fmt.Println("============================================================")
}
