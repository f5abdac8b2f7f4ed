// Package migrations embeds the versioned postgres schema so the server and
// the migrate CLI apply the same files without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file
//
//go:embed *.sql
var FS embed.FS
