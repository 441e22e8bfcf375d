package main

import (
	"mutual_aid/internal/config" // Custom import path (Config)
	"mutual_aid/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Apply the schema for all domain models
	db.Migrate(cfg.DSN())
}
