// Package migrations holds the goose SQL migrations of the console schema.
package migrations

import "embed"

// FS contains every *.sql migration.
//
//go:embed *.sql
var FS embed.FS
