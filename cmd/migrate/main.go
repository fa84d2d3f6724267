package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"parley-chat/config"
	"parley-chat/pkg/database"
)

const usage = `
Parley Chat - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Apply all pending migrations
  down        Roll back every migration
  version     Show the current schema version
  seed-dev    Seed development users, a private chat and a few messages

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate seed-dev
  go run ./cmd/migrate down
`

func main() {
	password := flag.String("seed-password", "password123", "Password of the seeded development users")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if cfg.DBEmbedded {
		pg, err := database.StartEmbedded(cfg)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer func() { _ = pg.Stop() }()
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer db.Close()

	switch command := flag.Arg(0); command {
	case "up":
		runMigrationsUp(db)
	case "down":
		runMigrationsDown(db)
	case "version":
		showVersion(db)
	case "seed-dev":
		runSeedDevelopment(ctx, db, *password)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *sql.DB) {
	log.Println("🚀 Running migrations UP...")

	if err := database.ApplyMigrations(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func runMigrationsDown(db *sql.DB) {
	log.Println("⬇️  Rolling back migrations...")

	if err := database.RollbackMigrations(db); err != nil {
		log.Fatalf("❌ Rollback failed: %v", err)
	}

	log.Println("✅ Rollback completed successfully!")
}

func showVersion(db *sql.DB) {
	version, dirty, err := database.MigrationVersion(db)
	if err != nil {
		log.Fatalf("❌ Could not read schema version: %v", err)
	}
	if version == 0 {
		log.Println("No migrations applied yet")
		return
	}
	log.Printf("Schema version: %d (dirty: %t)", version, dirty)
}

func runSeedDevelopment(ctx context.Context, db *sql.DB, password string) {
	log.Println("🌱 Seeding database (development mode)...")

	if err := database.ApplyMigrations(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	cfg := database.DefaultSeedConfig()
	cfg.Password = password
	result, err := database.SeedDevelopment(ctx, db, cfg)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	for _, u := range result.Users {
		log.Printf("   - User %d: %s <%s>", u.ID, u.Name, u.Email)
	}
	log.Printf("   - Private chat: %d", result.ChatID)
	log.Printf("   - Messages: %d", result.Messages)
	log.Println("✅ Development seeding completed!")
}
