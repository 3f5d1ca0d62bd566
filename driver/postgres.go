// Package driver
package driver

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPool is an interface that represents a connection pool to a driver.
type PostgresPool interface {
	// Acquire returns a connection from the pool.
	Acquire(ctx context.Context) (*pgxpool.Conn, error)

	// BeginTx starts a new transaction and returns a Tx.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)

	// Exec executes an SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	// Query executes an SQL query and returns the resulting rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes an SQL query and returns a single row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// Close closes the pool and all its connections.
	Close()
}

// maxOpenDbConn defines the maximum number of open driver connections.
const maxOpenDbConn = 10

// maxDbLifetime is the maximum lifetime of a driver connection in the pool.
const maxDbLifetime = 5 * time.Minute

// ConnectSQL connects to the Postgres server and returns the pool and an error.
func ConnectSQL(dsn string) (PostgresPool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConns = int32(maxOpenDbConn)
	config.MaxConnLifetime = maxDbLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	if err = testDB(pool); err != nil {
		return nil, err
	}

	return pool, nil
}

// testDB acquires and releases a connection from the pool
func testDB(p *pgxpool.Pool) error {
	conn, err := p.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return nil
}
