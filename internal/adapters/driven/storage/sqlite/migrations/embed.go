// Package migrations holds the versioned schema for the papers database.
package migrations

import "embed"

// FS holds the papers and sync_runs migrations, applied in file name order.
//
//go:embed *.sql
var FS embed.FS
