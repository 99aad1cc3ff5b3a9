// Package migrations embeds the goose SQL migrations for the bans and
// reservations tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
