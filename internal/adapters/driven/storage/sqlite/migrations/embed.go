// Package migrations holds the schema of the processing database.
package migrations

import "embed"

// FS holds the numbered NNN_name.up.sql and .down.sql scripts.
//
//go:embed *.sql
var FS embed.FS
