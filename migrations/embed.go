package migrations

import "embed"

// FS holds the SQL migrations. The statements are kept portable between
// PostgreSQL and SQLite.
//
//go:embed *.sql
var FS embed.FS
