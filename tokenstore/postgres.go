// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/lib/pq"
)

// PostgresSlot implements Slot for PostgreSQL. Each slot is one row keyed by
// name in a table shaped like:
//
//	CREATE TABLE admin_tokens (
//	    name       TEXT PRIMARY KEY,
//	    token      TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresSlot struct {
	db   *sql.DB
	name string

	selectQuery string
	upsertQuery string
	deleteQuery string
}

func OpenPostgres(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Tokens.Postgres.Host,
		cfg.Tokens.Postgres.Port,
		cfg.Tokens.Postgres.User,
		cfg.Tokens.Postgres.Password,
		cfg.Tokens.Postgres.DBName,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	return db, nil
}

func NewPostgresSlot(db *sql.DB, table, name string) *PostgresSlot {
	t := pq.QuoteIdentifier(table)
	return &PostgresSlot{
		db:          db,
		name:        name,
		selectQuery: "SELECT token FROM " + t + " WHERE name = $1",
		upsertQuery: "INSERT INTO " + t + " (name, token, updated_at) VALUES ($1, $2, NOW()) " +
			"ON CONFLICT (name) DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at",
		deleteQuery: "DELETE FROM " + t + " WHERE name = $1",
	}
}

func (s *PostgresSlot) Get(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, s.selectQuery, s.name).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres get %s: %w", s.name, err)
	}
	return token, nil
}

func (s *PostgresSlot) Set(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, s.name, token); err != nil {
		return fmt.Errorf("postgres set %s: %w", s.name, err)
	}
	return nil
}

func (s *PostgresSlot) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQuery, s.name); err != nil {
		return fmt.Errorf("postgres clear %s: %w", s.name, err)
	}
	return nil
}
