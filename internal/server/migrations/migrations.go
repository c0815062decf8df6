// Package migrations embeds the goose SQL migrations that define the
// server database schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
