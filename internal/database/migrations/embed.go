package migrations

import "embed"

// Files exposes the goose SQL migrations.
//
//go:embed *.sql
var Files embed.FS
