// Package migrations embeds the client keystore schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
