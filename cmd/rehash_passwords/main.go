package main

import (
	"flag"
	"fmt"
	"os"

	"books-explorer/explorer"
)

// rehash_passwords upgrades accounts copied from the legacy app, whose
// passwords were stored verbatim, to bcrypt hashes.
func main() {
	envFile := flag.String("env-file", ".env", "path to a .env file (ignored when missing)")
	dbPath := flag.String("db", "", "SQLite database path (overrides BOOKS_DB_PATH)")
	dryRun := flag.Bool("dry-run", false, "list affected accounts without changing them")
	flag.Parse()

	cfg, err := explorer.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	db, err := explorer.NewDatabase(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	names, err := db.PlaintextUsernames()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		os.Exit(1)
	}
	if len(names) == 0 {
		fmt.Println("All passwords are already hashed.")
		return
	}

	fmt.Printf("Found %d account(s) with plaintext passwords in %s\n", len(names), cfg.DBPath)

	successCount := 0
	errorCount := 0
	for _, name := range names {
		if *dryRun {
			fmt.Printf("  %s\n", name)
			continue
		}
		fmt.Printf("Rehashing: %s... ", name)
		if err := db.RehashPassword(name); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Println("SUCCESS")
		successCount++
	}

	if *dryRun {
		return
	}
	fmt.Printf("\nRehash complete!\n")
	fmt.Printf("Successfully rehashed: %d account(s)\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)
	if errorCount > 0 {
		os.Exit(1)
	}
}
