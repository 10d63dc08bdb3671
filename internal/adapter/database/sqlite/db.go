package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

//go:embed migrations/*.sql
var migrations embed.FS

const MemoryPath = ":memory:"

type Config struct {
	Path       string
	Name       string
	MaxConns   int
	LogQueries bool
}

// DB is the explicit pool handle shared by every repository. database/sql
// caps open connections at MaxConns and makes further callers wait.
type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

func Wrap(db *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           db,
		QueryBuilder: &queryBuilder,
	}
}

// NewDB opens the pool and brings the schema up to date. A migration failure
// closes the pool and is returned to the caller.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = "todolist.db"
	}

	if cfg.Name == "" {
		cfg.Name = "todolist"
	}

	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}

	dsn := dataSourceName(cfg.Path)

	sqlDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName(cfg.Name),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if cfg.LogQueries {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logged := sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger))

		sqlDB.Close()
		sqlDB = logged
	}

	if cfg.Path == MemoryPath {
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
		sqlDB.SetMaxIdleConns(cfg.MaxConns)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return Wrap(sqlDB), nil
}

func dataSourceName(path string) string {
	if path == MemoryPath || strings.Contains(path, "?") {
		return path
	}

	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// RunMigrations applies the embedded migrations. The migrate instance is not
// closed since that would close db as well.
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")

	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)

	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
