// Package migrations embeds the SQL schema so migrations run from any working directory.
package migrations

import "embed"

// Postgres holds the golang-migrate files under postgres/.
//
//go:embed postgres/*.sql
var Postgres embed.FS
