// Package migrations embeds the goose SQL migrations that provision the
// indexer schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
