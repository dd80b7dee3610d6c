package storage

import "database/sql"

var mysqlDialect = sqlDialect{
	name: "mysql",
	get:  `SELECT value FROM kv_records WHERE namespace = ? AND record_key = ?`,
	upsert: `INSERT INTO kv_records (namespace, record_key, value, updated_at) VALUES (?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
	delete: `DELETE FROM kv_records WHERE namespace = ? AND record_key = ?`,
}

// NewMySQLStore creates a store over a go-sql-driver/mysql connection.
func NewMySQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: mysqlDialect}
}
