// Package db opens the embedded DuckDB database used for SQL-backed sources.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	log "github.com/sirupsen/logrus"
)

// Config holds database configuration. An empty DataDir opens an in-memory
// database.
type Config struct {
	DataDir    string
	DBName     string
	Extensions []string
}

// DefaultExtensions are loaded on open when Config.Extensions is nil.
var DefaultExtensions = []string{"spatial", "parquet"}

// Open opens (creating if needed) the DuckDB database and loads extensions.
// Extensions that fail to install are logged and skipped, so an offline
// machine still gets a working database.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn := ""
	if cfg.DataDir != "" {
		dir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		name := cfg.DBName
		if name == "" {
			name = "mapstyle"
		}
		dsn = filepath.Join(dir, name+".duckdb")
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	exts := cfg.Extensions
	if exts == nil {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			log.WithError(err).WithField("extension", ext).Warn("duckdb extension unavailable")
		}
	}
	return conn, nil
}

// Rows reads every row of rs into column-keyed records, closing rs.
func Rows(rs *sql.Rows) (columns []string, records []map[string]any, err error) {
	defer rs.Close()

	columns, err = rs.Columns()
	if err != nil {
		return nil, nil, err
	}
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	return columns, records, rs.Err()
}
