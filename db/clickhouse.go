package db

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog/log"
)

// Conn is the global ClickHouse connection
var Conn driver.Conn

// Database is the current database name
var Database string

// Rows is the subset of driver.Rows the services read from.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Querier runs a read query. The ClickHouse connection satisfies it through
// Default; tests substitute an in-memory implementation.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Connect establishes a connection to ClickHouse
func Connect(ctx context.Context, addr, database, username, password string) error {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Debug: false,
		Settings: clickhouse.Settings{
			"max_execution_time": 30,
			// unmatched LEFT JOIN rows come back as NULL, not ''
			"join_use_nulls": 1,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	log.Info().Str("addr", addr).Str("database", database).Msg("connected to ClickHouse")

	Conn = conn
	Database = database
	return nil
}

// Ping checks the global connection
func Ping(ctx context.Context) error {
	if Conn == nil {
		return fmt.Errorf("clickhouse connection not initialised")
	}
	return Conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func Close() error {
	if Conn != nil {
		return Conn.Close()
	}
	return nil
}

type conn struct {
	c driver.Conn
}

func (c conn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return c.c.Query(ctx, query, args...)
}

// Default returns a Querier backed by the global connection.
func Default() Querier {
	return conn{c: Conn}
}
