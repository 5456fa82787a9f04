package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/team-hub/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// sqlitePragmas are applied per connection through the DSN, so every pooled
// connection enforces foreign keys.
var sqlitePragmas = []string{"_foreign_keys=on", "_busy_timeout=5000", "_journal_mode=WAL"}

// ParseURL maps DATABASE_URL onto a driver name and a DSN understood by it.
// postgres:// and postgresql:// go to lib/pq, sqlite:// and file: go to SQLite.
func ParseURL(databaseURL string) (driver string, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return DriverSQLite, withSQLitePragmas(strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return DriverSQLite, withSQLitePragmas(databaseURL), nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", databaseURL)
	}
}

func withSQLitePragmas(dsn string) string {
	for _, pragma := range sqlitePragmas {
		name := pragma[:strings.Index(pragma, "=")+1]
		if strings.Contains(dsn, name) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + pragma
		} else {
			dsn += "?" + pragma
		}
	}
	return dsn
}

func Connect(databaseURL string, timeout time.Duration) (*sqlx.DB, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			err = fmt.Errorf("%w (close also failed: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate applies every pending migration from the embedded migrations set.
// The migrate instance is intentionally not closed: closing it would close db.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var driver database.Driver
	switch db.DriverName() {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		return fmt.Errorf("migrations are not supported for driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
