package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const (
	DriverName = "mysql"
	// Dialect is the goqu dialect name matching DriverName.
	Dialect = "mysql"
)

// Q builds MySQL statements. Call Prepared(true) before ToSQL so values become placeholders.
var Q = goqu.Dialect(Dialect)

// DSN builds the driver DSN. multiStatements is only used by the migration runner.
func (c DatabaseConfig) DSN(multiStatements bool) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = 3 * time.Second
	mc.ReadTimeout = 5 * time.Second
	mc.WriteTimeout = 5 * time.Second
	mc.MultiStatements = multiStatements
	return mc.FormatDSN()
}

func Connect(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open(DriverName, c.DSN(false))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database %s: %w", c.DBName, err)
	}

	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	conn.SetMaxOpenConns(c.MaxOpenConns)
	conn.SetMaxIdleConns(c.MaxIdleConns)
	conn.SetConnMaxLifetime(c.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(c.ConnMaxIdleTime)

	return conn, nil
}

// X wraps an existing pool for the sqlx based stores; both share the same connections.
func X(conn *sql.DB) *sqlx.DB {
	return sqlx.NewDb(conn, DriverName)
}
