// Package migrations embeds the goose migration scripts for the local store.
//
// The migration sequence is the store's schema version. Migrations are
// additive only: new record sets are created if absent, existing ones are
// never dropped or transformed.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
