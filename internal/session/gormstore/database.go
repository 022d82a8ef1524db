package gormstore

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "session_schema_migrations"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Database bundles the raw pool used for migrations with the GORM handle
// used by the persister. Both share one *sql.DB.
type Database struct {
	SQL     *sqlx.DB
	Gorm    *gorm.DB
	dialect string
}

func Open(ctx context.Context, cfg Config) (*Database, error) {
	var (
		stdDriver string
		dialect   string
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		stdDriver, dialect = "sqlite3", "sqlite3"
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, err
		}
	case DriverPostgres:
		stdDriver, dialect = "pgx", "postgres"
	case DriverMySQL:
		stdDriver, dialect = "mysql", "mysql"
		cfg.DSN = withParseTime(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported session store driver %q", cfg.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, stdDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if dialect == "sqlite3" {
		// one connection keeps :memory: databases coherent and matches SQLite's single writer
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	var dialector gorm.Dialector
	switch dialect {
	case "sqlite3":
		dialector = &sqlite.Dialector{Conn: db.DB}
	case "mysql":
		dialector = mysql.New(mysql.Config{Conn: db.DB})
	default:
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm session database: %w", err)
	}

	return &Database{SQL: db, Gorm: gdb, dialect: dialect}, nil
}

// withParseTime makes the MySQL driver scan DATETIME columns into time.Time.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
		return fmt.Errorf("create session db directory: %w", err)
	}
	return nil
}

func (d *Database) prepareGoose() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationsTable)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(d.dialect); err != nil {
		return fmt.Errorf("goose: unsupported dialect %s: %w", d.dialect, err)
	}
	return nil
}

// Migrate applies every pending embedded migration.
func (d *Database) Migrate(ctx context.Context) error {
	if err := d.prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, d.SQL.DB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Rollback reverts the latest applied migration.
func (d *Database) Rollback(ctx context.Context) error {
	if err := d.prepareGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, d.SQL.DB, "migrations"); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.SQL.Close()
}
