package store

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL backend behind a SQLVideoStore.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const (
	connectAttempts = 10
	connectWait     = 3 * time.Second
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// ConnectPGDB opens a Postgres pool and waits for it to answer, retrying
// while the server comes up.
func ConnectPGDB(ctx context.Context, dsn string, logger *logrus.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 1; i <= connectAttempts; i++ {
		db, err = sql.Open(DialectPostgres.driverName(), dsn)
		if err != nil {
			logger.WithError(err).WithField("attempt", i).Warn("failed to open DB")
		} else {
			err = db.PingContext(ctx)
			if err == nil {
				logger.Info("Connected to Database!")
				return db, nil
			}
			db.Close()
			logger.WithError(err).WithField("attempt", i).Warn("DB not ready")
		}

		select {
		case <-time.After(connectWait):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "connect postgres")
		}
	}

	return nil, errors.Wrap(err, "could not connect to database after multiple attempts")
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "creating sqlite directory")
		}
	}

	db, err := sql.Open(DialectSQLite.driverName(), path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging sqlite database")
	}
	return db, nil
}

func MigrateFS(db *sql.DB, dialect Dialect, migrationsFS fs.FS, dir string) error {
	goose.SetBaseFS(migrationsFS)
	defer func() {
		goose.SetBaseFS(nil)
	}()
	return Migrate(db, dialect, dir)
}

func Migrate(db *sql.DB, dialect Dialect, dir string) error {
	err := goose.SetDialect(dialect.gooseDialect())
	if err != nil {
		return errors.Wrap(err, "migrate")
	}

	err = goose.Up(db, dir)
	if err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}
