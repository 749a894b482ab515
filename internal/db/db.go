package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// MemoryPath keeps the journal inside the process.
const MemoryPath = ":memory:"

// Open returns a journal database at path with the history table in place.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// every new connection to :memory: would get its own empty database
	conn.SetMaxOpenConns(1)

	if err := ensureSchema(context.Background(), conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// ensureSchema runs the embedded schema on every open. The journal only
// records one session and has a single table, so the schema is kept
// idempotent with IF NOT EXISTS instead of tracking migrations.
func ensureSchema(ctx context.Context, conn *sql.DB) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := conn.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
