// Package migrations embeds the goose migrations for the postgres driver.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
