package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"placementhub/internal/infra/persistence/memory"
)

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "pgx"
	selectSeed     = `SELECT bucket, payload FROM seed`
)

var sqlOpen = sql.Open

// SQLiteSource reads the seed table from an existing SQLite file.
type SQLiteSource struct {
	Path string
}

func (s SQLiteSource) Name() string { return "sqlite:" + s.Path }

func (s SQLiteSource) Load(ctx context.Context) (memory.Snapshot, error) {
	if s.Path == "" {
		return memory.Snapshot{}, errors.New("sqlite seed path required")
	}
	// sql.Open would create a missing file; the seed must already exist.
	if _, err := os.Stat(s.Path); err != nil {
		return memory.Snapshot{}, fmt.Errorf("sqlite seed: %w", err)
	}
	return loadFromSQL(ctx, sqliteDriver, s.Path)
}

// PostgresSource reads the seed table from a Postgres database.
type PostgresSource struct {
	DSN string
}

func (p PostgresSource) Name() string { return "postgres" }

func (p PostgresSource) Load(ctx context.Context) (memory.Snapshot, error) {
	if p.DSN == "" {
		return memory.Snapshot{}, errors.New("postgres seed dsn required")
	}
	return loadFromSQL(ctx, postgresDriver, p.DSN)
}

func loadFromSQL(ctx context.Context, driver, dsn string) (memory.Snapshot, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("open %s: %w", driver, err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return memory.Snapshot{}, fmt.Errorf("ping %s: %w", driver, err)
	}
	return loadSnapshot(ctx, db)
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, selectSeed)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select seed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap memory.Snapshot
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan seed: %w", err)
		}
		if err := decodeBucket(&snap, bucket, payload); err != nil {
			return memory.Snapshot{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate seed: %w", err)
	}
	return snap, nil
}
