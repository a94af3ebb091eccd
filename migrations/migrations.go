// Package migrations embeds the goose SQL migrations so deployments can
// apply them without shipping the files alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
