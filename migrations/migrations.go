// Package migrations embeds the SQL migrations for the shortened_urls table.
// Every up migration is written to succeed against both a fresh database and
// one that already holds the table from an earlier, untracked deployment.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
