package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, admin, messages")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "authguard.db"
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.MessageCode{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		err = seeder.SeedAll()
	case "admin":
		err = seeder.SeedAdmin()
	case "messages":
		err = seeder.SeedMessages()
	default:
		log.Fatalf("Unknown seed type: %s", *seedType)
	}

	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed successfully")
}

func showHelp() {
	log.Println("Usage: seed [-type all|admin|messages] [-db path]")
	log.Println("  -type     what to seed (default: all)")
	log.Println("  -db       database path, overrides DB_DATABASE")
}
