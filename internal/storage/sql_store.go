package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// sqlDialect holds the statements of one database flavor against the kv_records table.
type sqlDialect struct {
	name   string
	get    string
	upsert string
	delete string
}

// SQLStore keeps values in the kv_records table created by the embedded migrations.
// Put is a single upsert statement, so it is atomic without an explicit transaction.
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
}

// Get selects the value stored for key.
func (s *SQLStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, unavailable(err, "failed to get value from "+s.dialect.name)
	}
	return value, nil
}

// Put upserts the value stored for key.
func (s *SQLStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, namespace, key, value, time.Now().UTC())
	if err != nil {
		return unavailable(err, "failed to put value into "+s.dialect.name)
	}
	return nil
}

// Delete removes the row stored for key.
func (s *SQLStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.delete, namespace, key)
	if err != nil {
		return unavailable(err, "failed to delete value from "+s.dialect.name)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err, "failed to ping "+s.dialect.name)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
