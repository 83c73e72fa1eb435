// Command migrate manages the triage audit schema (triage_audit_events and
// its indexes). Run with no arguments to apply all pending migrations, or
// `migrate force <version>` to clear a dirty state after a failed run.
package main

import (
	"database/sql"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	appmigrations "github.com/andrewdunn358-dev/Veteran-sub000/migrations"
	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

func main() {
	logger := logging.Default()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping audit database", "error", err)
		os.Exit(1)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Error("failed to create database driver", "error", err)
		os.Exit(1)
	}

	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		logger.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		logger.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	if len(os.Args) >= 3 && os.Args[1] == "force" {
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logger.Error("invalid version argument", "error", err)
			os.Exit(1)
		}
		if err := m.Force(version); err != nil {
			logger.Error("failed to force version", "error", err, "version", version)
			os.Exit(1)
		}
		logger.Info("forced audit schema version", "version", version)
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}
	logger.Info("triage audit schema up to date",
		"table", "triage_audit_events",
		"version", version,
		"dirty", dirty,
	)
}
