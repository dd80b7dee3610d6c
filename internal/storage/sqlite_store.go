package storage

import "database/sql"

var sqliteDialect = sqlDialect{
	name: "sqlite",
	get:  `SELECT value FROM kv_records WHERE namespace = ? AND record_key = ?`,
	upsert: `INSERT INTO kv_records (namespace, record_key, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (namespace, record_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	delete: `DELETE FROM kv_records WHERE namespace = ? AND record_key = ?`,
}

// NewSQLiteStore creates a store over a modernc.org/sqlite connection.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: sqliteDialect}
}
