// Package migrations embeds the versioned schema files so binaries can
// migrate without shipping loose SQL next to the executable.
package migrations

import "embed"

//go:embed V*.sql
var FS embed.FS
