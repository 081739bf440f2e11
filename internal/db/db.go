package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pingTimeout bounds the connectivity check performed after opening.
const pingTimeout = 5 * time.Second

// sqliteDefaults are appended to SQLite DSNs that do not set them.
var sqliteDefaults = [][2]string{
	{"_busy_timeout", "5000"},
	{"_journal_mode", "WAL"},
	{"_synchronous", "FULL"},
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		// Open pings once with the caller's context instead.
		DisableAutomaticPing: true,
	}
}

// Open opens a GORM connection for dsn and checks it is reachable within ctx.
//
// A bare path or file: URL selects SQLite, which is what the desktop install uses. PostgreSQL
// DSNs are accepted for installs that keep their settings on a shared database server.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	dialect, err := detectDialectFromDSN(trimmed)
	if err != nil {
		return nil, err
	}
	var conn *gorm.DB
	switch dialect {
	case DialectPostgres:
		conn, err = openPostgres(trimmed)
	case DialectSQLite:
		conn, err = openSQLite(trimmed)
	default:
		err = fmt.Errorf("db: unsupported dialect: %s", dialect)
	}
	if err != nil {
		return nil, err
	}

	if errPing := ping(ctx, conn); errPing != nil {
		_ = Close(conn)
		return nil, errPing
	}
	if IsSQLite(conn) {
		if errPragma := applySQLitePragmas(conn.WithContext(ctx)); errPragma != nil {
			_ = Close(conn)
			return nil, errPragma
		}
	}
	return conn, nil
}

// Close releases the pooled connections behind conn.
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("db: close: %w", err)
	}
	return sqlDB.Close()
}

func ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("db: ping: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if errPing := sqlDB.PingContext(pingCtx); errPing != nil {
		return fmt.Errorf("db: ping: %w", errPing)
	}
	return nil
}

// detectDialectFromDSN infers the dialect from a DSN string.
func detectDialectFromDSN(dsn string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, nil
	case strings.Contains(lower, "host=") || strings.Contains(lower, "user=") || strings.Contains(lower, "dbname=") || strings.Contains(lower, "sslmode="):
		return DialectPostgres, nil
	case strings.HasPrefix(lower, "file:"),
		strings.HasPrefix(lower, "sqlite://"),
		strings.HasPrefix(lower, "sqlite3://"),
		!strings.Contains(lower, "://"):
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("db: unsupported dsn: %s", dsn)
	}
}

// openPostgres opens a PostgreSQL pool through the pgx stdlib driver.
func openPostgres(dsn string) (*gorm.DB, error) {
	cfg, errParse := pgx.ParseConfig(dsn)
	if errParse != nil {
		return nil, fmt.Errorf("db: parse dsn: %w", errParse)
	}
	sqlDB := stdlib.OpenDB(*cfg)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: open postgres: %w", err)
	}
	return conn, nil
}

// openSQLite opens the settings file with a single connection so writes never interleave.
func openSQLite(dsn string) (*gorm.DB, error) {
	target := parseSQLiteDSN(dsn)
	if target.path != "" {
		if dir := filepath.Dir(target.path); dir != "." && dir != "" {
			if errMkdir := os.MkdirAll(dir, 0o700); errMkdir != nil {
				return nil, fmt.Errorf("db: create sqlite dir: %w", errMkdir)
			}
		}
	}

	conn, err := gorm.Open(sqlite.Open(target.dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", err)
	}
	var sqlDB *sql.DB
	if sqlDB, err = conn.DB(); err != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return conn, nil
}

// sqliteTarget is a SQLite DSN ready for the driver plus the file it points at ("" when the
// database lives in memory).
type sqliteTarget struct {
	dsn  string
	path string
}

// parseSQLiteDSN turns sqlite:// URLs into file: DSNs, adds the default query parameters the
// DSN does not already set and extracts the database file path.
func parseSQLiteDSN(dsn string) sqliteTarget {
	dsn = strings.TrimSpace(dsn)
	if scheme, rest, ok := strings.Cut(dsn, "://"); ok {
		if s := strings.ToLower(scheme); s == "sqlite" || s == "sqlite3" {
			dsn = "file:" + rest
		}
	}

	location, query, _ := strings.Cut(dsn, "?")
	params := []string{}
	present := map[string]bool{}
	if query != "" {
		for _, param := range strings.Split(query, "&") {
			if param == "" {
				continue
			}
			params = append(params, param)
			name, _, _ := strings.Cut(param, "=")
			present[strings.ToLower(name)] = true
		}
	}
	for _, def := range sqliteDefaults {
		if !present[def[0]] {
			params = append(params, def[0]+"="+def[1])
		}
	}

	target := sqliteTarget{dsn: location + "?" + strings.Join(params, "&")}
	path := strings.TrimPrefix(location, "file:")
	if strings.HasPrefix(location, "file:") {
		path = strings.TrimPrefix(path, "//")
	}
	inMemory := present["mode"] && strings.Contains(strings.ToLower(query), "mode=memory")
	if path != "" && path != ":memory:" && !inMemory {
		target.path = path
	}
	return target
}

// applySQLitePragmas applies the pragmas the settings file relies on for durable saves.
func applySQLitePragmas(conn *gorm.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	} {
		if errExec := conn.Exec(pragma).Error; errExec != nil {
			return fmt.Errorf("db: sqlite pragma %s: %w", pragma, errExec)
		}
	}
	return nil
}
