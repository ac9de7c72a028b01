// Package migrations embute os scripts SQL do goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
