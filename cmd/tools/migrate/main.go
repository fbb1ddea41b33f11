package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/noah-isme/toko-pricing/internal/db"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

func main() {
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	_ = godotenv.Load()
	logger := obs.NewLogger("console", *logLevel).With().Str("command", command).Logger()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := db.Open(dbURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise migrator")
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Error().Err(err).Msg("close migrator")
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, convErr := intArg(args)
		if convErr != nil {
			logger.Fatal().Err(convErr).Msg("usage: migrate steps <n>")
		}
		err = m.Steps(n)
	case "force":
		n, convErr := intArg(args)
		if convErr != nil {
			logger.Fatal().Err(convErr).Msg("usage: migrate force <version>")
		}
		err = m.Force(n)
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			err = verErr
			break
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("current schema version")
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[1])
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command> [args]

Commands:
  up              apply all pending migrations
  down            roll back all migrations
  steps <n>       apply n migrations, negative n rolls back
  force <version> set the version without running migrations
  version         print the current schema version

Flags:`)
	flag.PrintDefaults()
}
