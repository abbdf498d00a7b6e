// Package migrations embeds the backup server schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
