// Package migrations embeds the goose migrations for the cache worker's
// response store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
