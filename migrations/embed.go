// Package migrations embeds the SQL schema of the kv_records table for every
// supported database driver.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per driver.
//
//go:embed sqlite/*.sql postgresql/*.sql mysql/*.sql
var FS embed.FS
