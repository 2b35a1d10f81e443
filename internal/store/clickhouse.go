package store

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ClickhouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func ConnectClickhouse(ctx context.Context, cfg ClickhouseConfig, logger *logrus.Logger) (driver.Conn, error) {
	var conn driver.Conn
	var err error

	for i := 1; i <= connectAttempts; i++ {
		conn, err = clickhouse.Open(&clickhouse.Options{
			Addr: []string{cfg.Addr},
			Auth: clickhouse.Auth{
				Database: cfg.Database,
				Username: cfg.Username,
				Password: cfg.Password,
			},
			ClientInfo: clickhouse.ClientInfo{
				Products: []struct {
					Name    string
					Version string
				}{
					{Name: "yt-categorizer", Version: "1.0"},
				},
			},
			Debugf: func(format string, v ...any) {
				logger.Debugf(format, v...)
			},
		})

		if err == nil {
			err = conn.Ping(ctx)
			if err == nil {
				logger.Info("Connected to ClickHouse!")
				return conn, nil
			}
		}

		logger.WithError(err).WithField("attempt", i).Warn("ClickHouse not ready")

		select {
		case <-time.After(connectWait):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "connect clickhouse")
		}
	}

	return nil, errors.Wrap(err, "could not connect to ClickHouse after multiple attempts")
}

// MigrateClickhouse applies the migrations found under dir in migrationsFS.
func MigrateClickhouse(cfg ClickhouseConfig, migrationsFS fs.FS, dir string) error {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return errors.Wrap(err, "migration source")
	}

	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("x-multi-statement", "true")
	if cfg.Username != "" {
		query.Set("username", cfg.Username)
		query.Set("password", cfg.Password)
	}
	dbURL := fmt.Sprintf("clickhouse://%s?%s", cfg.Addr, query.Encode())

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return errors.Wrap(err, "migration init error")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration failed")
	}

	return nil
}
