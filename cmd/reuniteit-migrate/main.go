// Package main is the entry point for the ReuniteIt database migration tool.
// It applies the embedded schema migrations for either configured driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/config"
	"github.com/prn-tf/reuniteit/internal/repository/postgres"
	"github.com/prn-tf/reuniteit/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "version":
		fmt.Printf("ReuniteIt Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := migrateUp(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migrations applied")

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", flag.Arg(0))
		printUsage()
		os.Exit(1)
	}
}

func migrateUp(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.Database.Driver == "postgres" {
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(ctx)
	}

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate(ctx)
}

func printUsage() {
	fmt.Println(`ReuniteIt Migration Tool

Usage:
  reuniteit-migrate [-config path] <command>

Commands:
  up          Apply all pending migrations
  version     Print version information
  help        Show this help message

The database driver and connection details come from the same configuration
the server uses (config file plus REUNITEIT_* environment variables).

Examples:
  reuniteit-migrate up
  reuniteit-migrate -config ./configs/config.yaml up`)
}
