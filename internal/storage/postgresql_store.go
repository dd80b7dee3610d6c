package storage

import "database/sql"

var postgresqlDialect = sqlDialect{
	name: "postgresql",
	get:  `SELECT value FROM kv_records WHERE namespace = $1 AND record_key = $2`,
	upsert: `INSERT INTO kv_records (namespace, record_key, value, updated_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (namespace, record_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	delete: `DELETE FROM kv_records WHERE namespace = $1 AND record_key = $2`,
}

// NewPostgreSQLStore creates a store over a lib/pq connection.
func NewPostgreSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: postgresqlDialect}
}
