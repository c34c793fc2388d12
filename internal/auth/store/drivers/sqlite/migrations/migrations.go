package migrations

import "embed"

// Migrations holds the golang-migrate up/down files for the sqlite driver.
//
//go:embed *.sql
var Migrations embed.FS
