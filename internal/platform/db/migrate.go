package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate applies (up) or rolls back one step (down) of the embedded schema migrations.
// It opens its own connection because migration files contain several statements.
func Migrate(c DatabaseConfig, direction string, log *zap.Logger) error {
	m, closeFn, err := newMigrator(c, log)
	if err != nil {
		return err
	}
	defer closeFn()

	log.Info("running database migration", zap.String("direction", direction), zap.String("database", c.DBName))
	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database migration: no change needed")
			return nil
		}
		log.Error("database migration failed", zap.Error(err))
		return err
	}
	return nil
}

// MigrationVersion reports the currently applied schema version.
func MigrationVersion(c DatabaseConfig, log *zap.Logger) (version uint, dirty bool, err error) {
	m, closeFn, err := newMigrator(c, log)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrator(c DatabaseConfig, log *zap.Logger) (*migrate.Migrate, func(), error) {
	conn, err := sql.Open(DriverName, c.DSN(true))
	if err != nil {
		return nil, nil, fmt.Errorf("open migration connection: %w", err)
	}
	driver, err := migratemysql.WithInstance(conn, &migratemysql.Config{DatabaseName: c.DBName})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, DriverName, driver)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	m.Log = newMigrationLogger(log, true)
	return m, func() {
		_, _ = m.Close()
		conn.Close()
	}, nil
}

type migrationLogger struct {
	logger  *zap.Logger
	verbose bool
}

func (l *migrationLogger) Printf(format string, v ...any) {
	l.logger.Sugar().Infof("DB Migration: "+format, v...)
}

func (l *migrationLogger) Verbose() bool {
	return l.verbose
}

func newMigrationLogger(logger *zap.Logger, verbose bool) *migrationLogger {
	return &migrationLogger{logger: logger, verbose: verbose}
}
